package wsserver

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rzbill/siphon/internal/broadcast"
	"github.com/rzbill/siphon/internal/filter"
	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/internal/runtime"
	"github.com/rzbill/siphon/internal/store"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

// broadcastDepth bounds the hub's fan-in queue. Store emission never
// blocks on the hub; when the queue is full the event is shed for every
// consumer at once, unlike the per-consumer drop in fanOut. This is the
// overload valve for bursts the hub loop cannot absorb, so it is sized
// well above the per-client queues.
const broadcastDepth = 1024

// bootstrapLimit caps the snapshot sent to a newly connected consumer.
const bootstrapLimit = 1000

// Envelope is the outbound wire shape, shared with the SSE transport.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// control is the inbound wire shape. Unknown types are ignored.
type control struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Hub maintains the set of connected consumers and fans out store events.
type Hub struct {
	st         *store.Store
	logger     logpkg.Logger
	gauge      prometheus.Gauge
	upgrader   websocket.Upgrader
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Envelope
	unsub      []func()
}

// New builds the hub and subscribes it to the store's event bus.
func New(rt *runtime.Runtime) *Hub {
	h := &Hub{
		st:     rt.Store(),
		logger: rt.Logger().WithComponent("ws"),
		gauge:  rt.Metrics().Consumers.WithLabelValues("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Envelope, broadcastDepth),
	}
	for _, event := range []string{broadcast.EventAppend, broadcast.EventClear, broadcast.EventSession} {
		h.unsub = append(h.unsub, h.st.On(event, h.enqueue(event)))
	}
	return h
}

// enqueue returns a bus handler that hands the event to the hub loop
// without ever blocking the emitter.
func (h *Hub) enqueue(event string) broadcast.Handler {
	return func(payload any) {
		select {
		case h.broadcast <- Envelope{Event: event, Payload: payload}:
		default:
			h.logger.Warn("broadcast queue full, dropping event", logpkg.Str("event", event))
		}
	}
}

// Run owns the client set until ctx is canceled. All map access happens
// on this goroutine.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-h.register:
			// Snapshot and register on the loop goroutine: appends
			// emitted before this point are in the snapshot, appends
			// after it reach the client through fanOut, and queued
			// events the snapshot already covers are filtered out by
			// bootMax. No append can fall between the two.
			res, err := h.st.Read(0, bootstrapLimit, filter.Options{})
			if err != nil {
				close(c.send)
				_ = c.conn.Close()
				continue
			}
			if n := len(res.Entries); n > 0 {
				c.bootMax = res.Entries[n-1].Sequence
			}
			c.send <- Envelope{Event: "bootstrap", Payload: res.Entries}
			h.clients[c] = true
			h.gauge.Inc()
			h.logger.Info("consumer connected", logpkg.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.gauge.Dec()
				h.logger.Info("consumer disconnected", logpkg.Int("clients", len(h.clients)))
			}
		case env := <-h.broadcast:
			h.fanOut(env)
		}
	}
}

// fanOut delivers one envelope to every consumer, dropping the ones that
// cannot keep up. Appends already covered by a consumer's bootstrap
// snapshot are skipped for that consumer.
func (h *Hub) fanOut(env Envelope) {
	entry, isAppend := env.Payload.(model.LogEntry)
	for c := range h.clients {
		if isAppend && env.Event == broadcast.EventAppend && entry.Sequence <= c.bootMax {
			continue
		}
		select {
		case c.send <- env:
		default:
			delete(h.clients, c)
			close(c.send)
			h.gauge.Dec()
			h.logger.Warn("consumer too slow, closing")
		}
	}
}

func (h *Hub) shutdown() {
	for _, off := range h.unsub {
		off()
	}
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		h.gauge.Dec()
	}
	h.logger.Info("hub stopped")
}

// ServeHTTP upgrades the connection and hands the consumer to the hub
// loop, which snapshots and registers it in one step.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", logpkg.Err(err))
		return
	}
	c := newClient(h, conn)
	h.register <- c
	c.start()
}
