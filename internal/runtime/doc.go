// Package runtime wires the log store, metrics, and config into a
// single-node siphon instance. It exposes Open, basic health checks,
// and accessors used by the servers and CLI.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	_ = rt.CheckHealth(context.Background())
//	rt.Store().Append(model.Incoming{Message: "hello"})
package runtime
