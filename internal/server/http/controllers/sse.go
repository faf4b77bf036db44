package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rzbill/siphon/internal/broadcast"
	"github.com/rzbill/siphon/internal/filter"
	"github.com/rzbill/siphon/internal/model"
)

// sseBufferDepth bounds the per-consumer event queue. A consumer that
// falls this far behind loses events rather than stalling the store.
const sseBufferDepth = 256

// bootstrapLimit caps the snapshot sent to a newly connected consumer.
const bootstrapLimit = 1000

// envelope is the wire shape shared by the SSE and WebSocket transports.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// handleEventsSSE streams the one-way fallback: a bootstrap snapshot
// followed by live append, clear, and session events.
func (c *LogsController) handleEventsSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Long-lived stream: lift the server's per-response write deadline.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	events := make(chan envelope, sseBufferDepth)
	push := func(event string) broadcast.Handler {
		return func(payload any) {
			select {
			case events <- envelope{Event: event, Payload: payload}:
			default:
			}
		}
	}
	offAppend := c.st.On(broadcast.EventAppend, push(broadcast.EventAppend))
	offClear := c.st.On(broadcast.EventClear, push(broadcast.EventClear))
	offSession := c.st.On(broadcast.EventSession, push(broadcast.EventSession))
	defer offAppend()
	defer offClear()
	defer offSession()

	gauge := c.rt.Metrics().Consumers.WithLabelValues("sse")
	gauge.Inc()
	defer gauge.Dec()

	// The handlers above are live before the snapshot is taken, so no
	// append can fall between the two. Appends the snapshot already
	// covers are filtered out of the queue by bootMax below.
	res, err := c.st.Read(0, bootstrapLimit, filter.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Bootstrap failed")
		return
	}
	var bootMax uint32
	if n := len(res.Entries); n > 0 {
		bootMax = res.Entries[n-1].Sequence
	}
	if err := writeSSE(w, envelope{Event: "bootstrap", Payload: res.Entries}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if entry, ok := ev.Payload.(model.LogEntry); ok && ev.Event == broadcast.EventAppend && entry.Sequence <= bootMax {
				continue
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE sends one envelope as an SSE data event.
func writeSSE(w http.ResponseWriter, env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
