package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeConn struct {
	msgs   chan []byte
	once   sync.Once
	closed chan struct{}
}

func newFakeConn(msgs ...[]byte) *fakeConn {
	ch := make(chan []byte, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	return &fakeConn{msgs: ch, closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case m, ok := <-f.msgs:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-f.closed:
		return nil, errors.New("connection closed")
	}
}

func (f *fakeConn) WriteJSON(v any) error { return nil }

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// instantAfter records requested delays and fires immediately.
func instantAfter(delays chan time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		select {
		case delays <- d:
		default:
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
}

func collectDelays(t *testing.T, delays chan time.Duration, n int) []time.Duration {
	t.Helper()
	out := make([]time.Duration, 0, n)
	for len(out) < n {
		select {
		case d := <-delays:
			out = append(out, d)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d delays: %v", len(out), out)
		}
	}
	return out
}

func TestBackoffSequence(t *testing.T) {
	delays := make(chan time.Duration, 32)
	failDialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		return nil, errors.New("refused")
	}
	c := NewConsumer("http://example.invalid", Handlers{},
		WithDialer(failDialer),
		WithSSEFallback(false),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	got := collectDelays(t, delays, 7)
	c.Dispose()

	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delay %d: want %v, got %v (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestBackoffResetsOnOpen(t *testing.T) {
	delays := make(chan time.Duration, 32)
	var attempts atomic.Int64
	dialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		switch attempts.Add(1) {
		case 1, 2:
			return nil, errors.New("refused")
		case 3:
			// Opens, then drops immediately.
			conn := newFakeConn()
			close(conn.msgs)
			return conn, nil
		default:
			return nil, errors.New("refused")
		}
	}
	c := NewConsumer("http://example.invalid", Handlers{},
		WithDialer(dialer),
		WithSSEFallback(false),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	got := collectDelays(t, delays, 4)
	c.Dispose()

	// Two failures back off 1s then 2s; the successful open resets the
	// ladder, so the post-drop delay starts at 1s again.
	want := []time.Duration{1 * time.Second, 2 * time.Second, 1 * time.Second, 2 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delay %d: want %v, got %v (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []State
	open := make(chan struct{})

	var attempts atomic.Int64
	conn := newFakeConn()
	dialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("refused")
		}
		return conn, nil
	}
	delays := make(chan time.Duration, 32)
	c := NewConsumer("http://example.invalid", Handlers{
		OnState: func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
			if s == StateOpen {
				close(open)
			}
		},
	},
		WithDialer(dialer),
		WithSSEFallback(false),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	select {
	case <-open:
	case <-time.After(2 * time.Second):
		t.Fatalf("never reached open")
	}
	c.Dispose()

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateConnecting, StateClosed, StateConnecting, StateOpen, StateDisposed}
	if len(states) != len(want) {
		t.Fatalf("states: %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state %d: want %v, got %v (all: %v)", i, want[i], states[i], states)
		}
	}
	if c.State() != StateDisposed {
		t.Fatalf("disposed consumer reports %v", c.State())
	}
}

func TestDisposeIsTerminal(t *testing.T) {
	var attempts atomic.Int64
	dialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		attempts.Add(1)
		return nil, errors.New("refused")
	}
	delays := make(chan time.Duration, 32)
	c := NewConsumer("http://example.invalid", Handlers{},
		WithDialer(dialer),
		WithSSEFallback(false),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	collectDelays(t, delays, 2)
	c.Dispose()
	after := attempts.Load()

	// Neither a second Start nor time passing may dial again.
	c.Start()
	time.Sleep(50 * time.Millisecond)
	if got := attempts.Load(); got != after {
		t.Fatalf("dialed after dispose: %d -> %d", after, got)
	}
	if c.State() != StateDisposed {
		t.Fatalf("state after dispose: %v", c.State())
	}
}

func TestEventDispatch(t *testing.T) {
	mustJSON := func(event string, payload any) []byte {
		p, _ := json.Marshal(payload)
		b, _ := json.Marshal(Envelope{Event: event, Payload: p})
		return b
	}
	conn := newFakeConn(
		mustJSON(EventBootstrap, []Entry{{Message: "a"}, {Message: "b"}}),
		mustJSON(EventAppend, Entry{Message: "c", Level: "warn"}),
		mustJSON(EventClear, Session{Label: "wiped"}),
		mustJSON(EventSession, Session{Label: "next"}),
	)
	dialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		return conn, nil
	}

	type got struct {
		bootstrap []Entry
		appends   []Entry
		clears    []Session
		sessions  []Session
	}
	var mu sync.Mutex
	var g got
	done := make(chan struct{})
	delays := make(chan time.Duration, 4)
	c := NewConsumer("http://example.invalid", Handlers{
		OnBootstrap: func(entries []Entry) {
			mu.Lock()
			g.bootstrap = entries
			mu.Unlock()
		},
		OnAppend: func(e Entry) {
			mu.Lock()
			g.appends = append(g.appends, e)
			mu.Unlock()
		},
		OnClear: func(s Session) {
			mu.Lock()
			g.clears = append(g.clears, s)
			mu.Unlock()
		},
		OnSession: func(s Session) {
			mu.Lock()
			g.sessions = append(g.sessions, s)
			mu.Unlock()
			close(done)
		},
	},
		WithDialer(dialer),
		WithSSEFallback(false),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events never arrived")
	}
	c.Dispose()

	mu.Lock()
	defer mu.Unlock()
	if len(g.bootstrap) != 2 || g.bootstrap[0].Message != "a" {
		t.Fatalf("bootstrap: %+v", g.bootstrap)
	}
	if len(g.appends) != 1 || g.appends[0].Level != "warn" {
		t.Fatalf("appends: %+v", g.appends)
	}
	if len(g.clears) != 1 || g.clears[0].Label != "wiped" {
		t.Fatalf("clears: %+v", g.clears)
	}
	if len(g.sessions) != 1 || g.sessions[0].Label != "next" {
		t.Fatalf("sessions: %+v", g.sessions)
	}
}

func TestSSEFallbackAtStartup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/logs/events" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		p, _ := json.Marshal([]Entry{{Message: "old"}})
		fmt.Fprintf(w, "data: %s\n\n", mustEnvelope(t, EventBootstrap, p))
		p, _ = json.Marshal(Entry{Message: "fresh"})
		fmt.Fprintf(w, "data: %s\n\n", mustEnvelope(t, EventAppend, p))
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	var dials atomic.Int64
	failDialer := func(ctx context.Context, url string, h http.Header) (Conn, error) {
		dials.Add(1)
		return nil, errors.New("no websocket here")
	}
	appended := make(chan Entry, 1)
	delays := make(chan time.Duration, 4)
	c := NewConsumer(srv.URL, Handlers{
		OnAppend: func(e Entry) {
			select {
			case appended <- e:
			default:
			}
		},
	},
		WithDialer(failDialer),
		WithAfter(instantAfter(delays)),
	)
	c.Start()
	select {
	case e := <-appended:
		if e.Message != "fresh" {
			t.Fatalf("wrong entry: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sse fallback never delivered")
	}
	if got := dials.Load(); got != 1 {
		t.Fatalf("expected a single websocket attempt before fallback, got %d", got)
	}
	c.Dispose()
}

func mustEnvelope(t *testing.T, event string, payload []byte) []byte {
	t.Helper()
	b, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return b
}
