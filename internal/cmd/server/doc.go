// Package serverrun exposes a shared Run entrypoint used by the CLI to
// start the siphon runtime with its HTTP server and WebSocket hub,
// handling lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{HTTPAddr: ":7411", Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
