package controllers

import (
	"net/http"

	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/internal/runtime"
)

// GeneralController handles general HTTP endpoints like health and sessions.
//
// It provides endpoints for service health monitoring, build metadata,
// buffer statistics, and session listing.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Build metadata (/v1/meta)
// - Buffer statistics (/v1/stats)
// - Session listing (/v1/sessions) and creation (/v1/sessions/start)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/meta", c.handleMeta)
	mux.HandleFunc("/v1/stats", c.handleStats)
	mux.HandleFunc("/v1/sessions", c.handleListSessions)
	mux.HandleFunc("/v1/sessions/start", c.handleSessionStart)
}

// handleHealth returns liveness plus a small snapshot of buffer state.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	st := c.rt.Store().Stats()
	writeJSON(w, healthResp{
		OK:         true,
		UptimeS:    int64(c.rt.Uptime().Seconds()),
		Entries:    st.Count,
		Dropped:    st.Dropped,
		BufferSize: st.Size,
	})
}

// handleMeta returns version and start metadata.
func (c *GeneralController) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metaResp{
		Version:   runtime.Version,
		Commit:    runtime.Commit,
		StartedAt: c.rt.StartedAt().UTC().Format(model.TimestampLayout),
	})
}

// handleStats returns buffer counters.
func (c *GeneralController) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.rt.Store().Stats())
}

// handleListSessions lists all sessions, oldest first.
func (c *GeneralController) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sessionsResp{
		Sessions: c.rt.Store().ListSessions(),
		Current:  c.rt.Store().CurrentSession().ID,
	})
}

// handleSessionStart begins a new session without clearing the buffer.
func (c *GeneralController) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}
	writeJSON(w, c.rt.Store().StartSession(req.Label))
}
