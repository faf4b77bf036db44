package client

import "encoding/json"

// Stream event names carried in envelopes.
const (
	EventBootstrap = "bootstrap"
	EventAppend    = "append"
	EventClear     = "clear"
	EventSession   = "session"
)

// Entry is the wire shape of a stored log entry.
type Entry struct {
	ID        string `json:"id,omitempty"`
	Sequence  uint32 `json:"sequence,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message"`
	ClientID  string `json:"clientId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Session is the wire shape of a session record.
type Session struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt,omitempty"`
	EntryCount int    `json:"entryCount"`
}

// Envelope frames every event delivered over WebSocket or SSE.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Handlers receives decoded stream events. Nil fields are skipped.
type Handlers struct {
	OnBootstrap func([]Entry)
	OnAppend    func(Entry)
	OnClear     func(Session)
	OnSession   func(Session)
	OnState     func(State)
}

// dispatch decodes the envelope payload and invokes the matching handler.
// Undecodable payloads and unknown events are dropped.
func (h Handlers) dispatch(env Envelope) {
	switch env.Event {
	case EventBootstrap:
		if h.OnBootstrap == nil {
			return
		}
		var entries []Entry
		if json.Unmarshal(env.Payload, &entries) == nil {
			h.OnBootstrap(entries)
		}
	case EventAppend:
		if h.OnAppend == nil {
			return
		}
		var e Entry
		if json.Unmarshal(env.Payload, &e) == nil {
			h.OnAppend(e)
		}
	case EventClear:
		if h.OnClear == nil {
			return
		}
		var s Session
		if json.Unmarshal(env.Payload, &s) == nil {
			h.OnClear(s)
		}
	case EventSession:
		if h.OnSession == nil {
			return
		}
		var s Session
		if json.Unmarshal(env.Payload, &s) == nil {
			h.OnSession(s)
		}
	}
}
