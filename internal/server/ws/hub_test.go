package wsserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	cfgpkg "github.com/rzbill/siphon/internal/config"
	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/internal/runtime"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

type wireEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newTestHub(t *testing.T) (*runtime.Runtime, *websocket.Conn) {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{
		Config: cfgpkg.Default(),
		Logger: logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})),
	})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	h := New(rt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Run(ctx) }()
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return rt, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wireEnvelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	var env wireEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func TestBootstrapThenLiveAppend(t *testing.T) {
	rt, conn := newTestHub(t)

	// Receiving the bootstrap proves the consumer is registered; only
	// then are live appends guaranteed to reach it.
	env := readEnvelope(t, conn)
	if env.Event != "bootstrap" {
		t.Fatalf("first message must be bootstrap, got %q", env.Event)
	}

	rt.Store().Append(model.Incoming{Message: "live"})
	env = readEnvelope(t, conn)
	if env.Event != "append" {
		t.Fatalf("expected append event, got %q", env.Event)
	}
	var entry model.LogEntry
	if err := json.Unmarshal(env.Payload, &entry); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if entry.Message != "live" {
		t.Fatalf("wrong entry delivered: %+v", entry)
	}
}

func TestBootstrapSnapshotContents(t *testing.T) {
	rt, err := runtime.Open(runtime.Options{
		Config: cfgpkg.Default(),
		Logger: logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})),
	})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	rt.Store().Append(model.Incoming{Message: "a"})
	rt.Store().Append(model.Incoming{Message: "b"})

	h := New(rt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Run(ctx) }()
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	env := readEnvelope(t, conn)
	if env.Event != "bootstrap" {
		t.Fatalf("expected bootstrap, got %q", env.Event)
	}
	var entries []model.LogEntry
	if err := json.Unmarshal(env.Payload, &entries); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "a" || entries[1].Message != "b" {
		t.Fatalf("snapshot wrong: %+v", entries)
	}
}

// A consumer connecting while a producer is appending must see every
// entry exactly once: the bootstrap tail and the first live append have
// to be contiguous, with no holes and no duplicates.
func TestConnectDuringAppendsLosesNothing(t *testing.T) {
	const total = 200
	for round := 0; round < 3; round++ {
		rt, conn := newTestHub(t)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < total; i++ {
				rt.Store().Append(model.Incoming{Message: "burst"})
			}
		}()

		env := readEnvelope(t, conn)
		if env.Event != "bootstrap" {
			t.Fatalf("round %d: first message must be bootstrap, got %q", round, env.Event)
		}
		var boot []model.LogEntry
		if err := json.Unmarshal(env.Payload, &boot); err != nil {
			t.Fatalf("round %d: decode bootstrap: %v", round, err)
		}
		next := uint32(1)
		for _, e := range boot {
			if e.Sequence != next {
				t.Fatalf("round %d: bootstrap hole: want seq %d, got %d", round, next, e.Sequence)
			}
			next++
		}

		<-done
		for next <= total {
			env := readEnvelope(t, conn)
			if env.Event != "append" {
				t.Fatalf("round %d: expected append, got %q", round, env.Event)
			}
			var e model.LogEntry
			if err := json.Unmarshal(env.Payload, &e); err != nil {
				t.Fatalf("round %d: decode append: %v", round, err)
			}
			if e.Sequence != next {
				t.Fatalf("round %d: stream not contiguous after bootstrap seq %d: want %d, got %d", round, len(boot), next, e.Sequence)
			}
			next++
		}
	}
}

func TestClearControlMessage(t *testing.T) {
	rt, conn := newTestHub(t)
	_ = readEnvelope(t, conn) // bootstrap

	rt.Store().Append(model.Incoming{Message: "doomed"})
	_ = readEnvelope(t, conn) // the append above

	if err := conn.WriteJSON(map[string]string{"type": "clear", "label": "wiped"}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	env := readEnvelope(t, conn)
	if env.Event != "clear" {
		t.Fatalf("expected clear event, got %q", env.Event)
	}
	var sess model.Session
	if err := json.Unmarshal(env.Payload, &sess); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if sess.Label != "wiped" {
		t.Fatalf("clear label lost: %+v", sess)
	}
	if st := rt.Store().Stats(); st.Count != 0 {
		t.Fatalf("buffer not cleared: %+v", st)
	}
}

func TestMalformedControlIgnored(t *testing.T) {
	_, conn := newTestHub(t)
	_ = readEnvelope(t, conn) // bootstrap

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "session", "label": "after-garbage"}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	env := readEnvelope(t, conn)
	if env.Event != "session" {
		t.Fatalf("connection should survive malformed input, got %q", env.Event)
	}
}
