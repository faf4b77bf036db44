// Package client provides the `siphon` command-line client.
//
// The CLI talks to the siphon HTTP and WebSocket endpoints to push,
// read, and follow log entries from a terminal. It is primarily
// intended for developers and operators.
//
// Installation
//
//	go install github.com/rzbill/siphon/cmd/siphon@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:7411 and can be overridden with the
// SIPHON_HTTP environment variable. A shared secret, when the server
// requires one, is read from SIPHON_TOKEN.
//
// Usage
//
//	siphon logs push --level warn --message "disk low" --data '{"free":42}'
//
//	siphon logs fetch --levels error,fatal --limit 50
//	siphon logs fetch --cursor 120            # resume from a cursor
//	siphon logs fetch --filter 'level == "error" && clientId == "web"'
//
//	# Follow the live stream (WebSocket, SSE fallback)
//	siphon logs tail
//
//	siphon logs clear --label fresh
//
//	siphon session start --label debugging
//	siphon session list
//
//	siphon stats
//
// Notes
//
//   - fetch prints one JSON entry per line followed by a cursor line
//     usable with --cursor to page through the buffer.
//   - tail prints the bootstrap snapshot first, then live entries.
package client
