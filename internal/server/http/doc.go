// Package httpserver provides the REST gateway for siphon: log ingest and
// reads, session management, the SSE fallback stream, Prometheus metrics,
// and optional dashboard statics.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := httpserver.New(rt, nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":7411")
package httpserver
