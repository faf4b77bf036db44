// Package metrics exposes the relay's Prometheus instrumentation. Each
// Metrics value owns its registry so runtimes (and tests) can be
// constructed side by side without duplicate-registration panics.
package metrics
