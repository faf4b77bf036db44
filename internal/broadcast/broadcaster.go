package broadcast

import "sync"

// Events emitted by the log store.
const (
	EventAppend  = "append"
	EventClear   = "clear"
	EventSession = "session"
)

// Handler receives an event payload.
type Handler func(payload any)

type registration struct {
	id      uint64
	event   string
	handler Handler
}

// Broadcaster fans events out to registered handlers. The zero value is
// not usable; construct with New.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*registration
}

// New returns an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{}
}

// On registers a handler for an event and returns an idempotent
// unsubscribe function.
func (b *Broadcaster) On(event string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	reg := &registration{id: b.nextID, event: event, handler: handler}
	b.subs = append(b.subs, reg)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, r := range b.subs {
			if r.id == reg.id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit invokes every handler registered for event, in registration order.
// The subscriber set is snapshotted before dispatch, so handlers may
// subscribe or unsubscribe during emission without corrupting iteration.
func (b *Broadcaster) Emit(event string, payload any) {
	b.mu.Lock()
	matched := make([]Handler, 0, len(b.subs))
	for _, r := range b.subs {
		if r.event == event {
			matched = append(matched, r.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range matched {
		dispatch(h, payload)
	}
}

// dispatch isolates a single handler invocation: a panicking subscriber is
// contained here and the remaining handlers still run.
func dispatch(h Handler, payload any) {
	defer func() { _ = recover() }()
	h(payload)
}
