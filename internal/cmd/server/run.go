package serverrun

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/rzbill/siphon/internal/config"
	"github.com/rzbill/siphon/internal/runtime"
	httpserver "github.com/rzbill/siphon/internal/server/http"
	wsserver "github.com/rzbill/siphon/internal/server/ws"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

// Options for running the server.
type Options struct {
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the HTTP server and WebSocket hub and blocks until ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context. We
	// layer a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.HTTPAddr
	}

	procLogger, err := logpkg.ApplyConfig(&opts.Config.Log)
	if err != nil {
		// Fall back to a sane default rather than refusing to start.
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(opts.Config.Log.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{Config: opts.Config, Logger: procLogger})
	if err != nil {
		return err
	}

	procLogger.Info("Starting siphon server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Int("buffer_size", opts.Config.BufferSize),
		logpkg.Str("level", opts.Config.Log.Level),
		logpkg.Str("format", opts.Config.Log.Format),
		logpkg.Bool("auth", opts.Config.AuthToken != ""),
		logpkg.Str("version", runtime.Version),
	)

	hub := wsserver.New(rt)
	hsrv := httpserver.New(rt, hub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = hub.Run(sctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("http server error", logpkg.Err(err))
		}
	}()

	<-sctx.Done()
	hsrv.Close()
	wg.Wait()
	return nil
}
