package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/rzbill/siphon/internal/config"
	"github.com/rzbill/siphon/internal/metrics"
	"github.com/rzbill/siphon/internal/store"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

// Version metadata, overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires the log store, metrics, and config for a single-node instance.
type Runtime struct {
	store   *store.Store
	metrics *metrics.Metrics
	config  cfgpkg.Config
	logger  logpkg.Logger
	started time.Time
}

// Open builds the runtime and its in-memory store.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	m := metrics.New()
	st := store.New(store.Options{
		Size:      opts.Config.BufferSize,
		Logger:    logger,
		Metrics:   m,
		ReadLimit: opts.Config.ReadLimit,
	})
	rt := &Runtime{
		store:   st,
		metrics: m,
		config:  opts.Config,
		logger:  logger,
		started: time.Now(),
	}
	return rt, nil
}

// CheckHealth performs a simple liveness check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("store not open")
	}
	return ctx.Err()
}

// Uptime reports how long the runtime has been open.
func (r *Runtime) Uptime() time.Duration { return time.Since(r.started) }

// StartedAt reports when the runtime was opened.
func (r *Runtime) StartedAt() time.Time { return r.started }

// Store returns the shared log store.
func (r *Runtime) Store() *store.Store { return r.store }

// Metrics returns the runtime's metrics registry.
func (r *Runtime) Metrics() *metrics.Metrics { return r.metrics }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime's root logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
