package httpserver

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rzbill/siphon/internal/runtime"
	"github.com/rzbill/siphon/internal/server/http/controllers"
)

// Server hosts the REST surface, the SSE stream, the metrics endpoint,
// and optionally the dashboard statics and the WebSocket hub.
type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
}

// New builds the server. hub, when non-nil, is mounted at /v1/logs/ws.
func New(rt *runtime.Runtime, hub http.Handler) *Server {
	mux := http.NewServeMux()
	reg := controllers.NewControllerRegistry(rt)
	reg.RegisterAllRoutes(mux)
	if hub != nil {
		mux.Handle("/v1/logs/ws", hub)
	}
	mux.Handle("/metrics", rt.Metrics().Handler())
	if dir := rt.Config().DashboardDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	handler := cors(auth(rt.Config().AuthToken, mux))
	return &Server{rt: rt, srv: &http.Server{
		Handler: handler,
		// Streaming handlers (SSE, the hijacked WebSocket) manage their
		// own deadlines; everything else answers within this window.
		WriteTimeout:      rt.Config().WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Addr reports the bound listener address, useful when listening on :0.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// auth enforces a shared bearer secret when one is configured. Browser
// EventSource and WebSocket clients cannot set headers, so a token query
// parameter is accepted as an equivalent.
func auth(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	want := []byte(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query().Get("token")
		if got == "" {
			h := r.Header.Get("Authorization")
			got = strings.TrimPrefix(h, "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
