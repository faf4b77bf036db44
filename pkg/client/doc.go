// Package client provides the two siphon client roles: a Producer that
// pushes log entries over HTTP and never lets delivery problems reach
// the caller, and a Consumer that follows the live stream over
// WebSocket with automatic reconnection, falling back to SSE once when
// the WebSocket endpoint is unavailable at startup.
package client
