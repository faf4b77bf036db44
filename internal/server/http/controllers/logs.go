package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rzbill/siphon/internal/filter"
	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/internal/runtime"
	"github.com/rzbill/siphon/internal/store"
)

// maxPushBody caps a single push request.
const maxPushBody = 4 << 20

// LogsController handles all log-related HTTP endpoints.
//
// It provides the ingest path (single entries and batches), cursor-based
// reads with optional filtering, clearing, and the SSE live stream.
type LogsController struct {
	rt *runtime.Runtime
	st *store.Store
}

// NewLogsController creates a new logs controller.
func NewLogsController(rt *runtime.Runtime) *LogsController {
	return &LogsController{rt: rt, st: rt.Store()}
}

// RegisterRoutes registers all log-related routes with the given mux.
func (c *LogsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/logs", c.handleRead)
	mux.HandleFunc("/v1/logs/push", c.handlePush)
	mux.HandleFunc("/v1/logs/clear", c.handleClear)
	mux.HandleFunc("/v1/logs/events", c.handleEventsSSE)
}

// handlePush ingests one entry or a JSON array batch.
//
// Batches apply partially: valid members are stored in order and invalid
// ones are reported back by index.
func (c *LogsController) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		writeError(w, http.StatusBadRequest, "Empty request body")
		return
	}

	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON array")
			return
		}
		stored, errs := c.st.AppendMany(raws)
		resp := pushResp{Stored: stored}
		for _, e := range errs {
			resp.Errors = append(resp.Errors, batchErrItem{Index: e.Index, Error: e.Err.Error()})
		}
		writeJSON(w, resp)
		return
	}

	entry, err := c.st.AppendPayload(trimmed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, pushResp{Stored: []model.LogEntry{entry}})
}

// handleRead returns a page of entries from the given cursor.
//
// Query params: cursor, limit, levels (csv), clientId, sessionId, since,
// filter (expression).
func (c *LogsController) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	opts := filter.Options{
		Levels:    parseLevels(q.Get("levels")),
		ClientID:  q.Get("clientId"),
		SessionID: q.Get("sessionId"),
		Since:     q.Get("since"),
		Expr:      q.Get("filter"),
		Limit:     parseLimit(q.Get("limit")),
	}
	res, err := c.st.Read(parseCursor(q.Get("cursor")), 0, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, res)
}

// handleClear empties the buffer and starts a fresh session.
func (c *LogsController) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}
	writeJSON(w, c.st.Clear(req.Label))
}
