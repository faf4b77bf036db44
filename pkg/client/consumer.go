package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	logpkg "github.com/rzbill/siphon/pkg/log"
)

// State is the consumer connection state.
type State int

const (
	// StateConnecting means a dial is in flight.
	StateConnecting State = iota
	// StateOpen means the stream is live.
	StateOpen
	// StateClosed means the stream dropped and a retry is pending.
	StateClosed
	// StateDisposed is terminal; a disposed consumer never reconnects.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by control operations when no stream is open.
var ErrNotConnected = errors.New("consumer not connected")

// Default reconnect backoff bounds.
const (
	DefaultBackoffFloor   = 1 * time.Second
	DefaultBackoffCeiling = 30 * time.Second
)

// Conn is the stream connection the consumer reads from.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a stream connection. Injectable for tests.
type Dialer func(ctx context.Context, url string, header http.Header) (Conn, error)

type gorillaConn struct{ c *websocket.Conn }

func (g gorillaConn) ReadMessage() ([]byte, error) {
	_, data, err := g.c.ReadMessage()
	return data, err
}
func (g gorillaConn) WriteJSON(v any) error { return g.c.WriteJSON(v) }
func (g gorillaConn) Close() error          { return g.c.Close() }

func defaultDialer(ctx context.Context, url string, header http.Header) (Conn, error) {
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return gorillaConn{c: c}, nil
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithToken sends the shared secret on every dial and request.
func WithToken(token string) ConsumerOption {
	return func(c *Consumer) { c.token = token }
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d Dialer) ConsumerOption {
	return func(c *Consumer) { c.dialer = d }
}

// WithBackoff overrides the reconnect delay bounds.
func WithBackoff(floor, ceiling time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.floor = floor
		c.ceiling = ceiling
	}
}

// WithAfter replaces the backoff timer source. Test hook.
func WithAfter(after func(time.Duration) <-chan time.Time) ConsumerOption {
	return func(c *Consumer) { c.after = after }
}

// WithSSEFallback toggles the one-shot SSE fallback (default on).
func WithSSEFallback(enabled bool) ConsumerOption {
	return func(c *Consumer) { c.sseFallback = enabled }
}

// WithConsumerLogger routes consumer diagnostics to the given logger.
func WithConsumerLogger(l logpkg.Logger) ConsumerOption {
	return func(c *Consumer) { c.logger = l }
}

// WithHTTPClient replaces the HTTP client used for the SSE fallback.
func WithHTTPClient(hc *http.Client) ConsumerOption {
	return func(c *Consumer) { c.httpc = hc }
}

// Consumer follows the live log stream. It connects over WebSocket,
// reconnects with exponential backoff when the stream drops, and falls
// back to SSE once if the WebSocket endpoint is unavailable at startup.
type Consumer struct {
	baseURL     string
	token       string
	id          string
	handlers    Handlers
	dialer      Dialer
	httpc       *http.Client
	after       func(time.Duration) <-chan time.Time
	floor       time.Duration
	ceiling     time.Duration
	sseFallback bool
	logger      logpkg.Logger

	mu     sync.Mutex
	state  State
	conn   Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer builds a consumer for the server at baseURL
// (e.g. "http://localhost:7411").
func NewConsumer(baseURL string, h Handlers, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		id:          uuid.NewString(),
		handlers:    h,
		dialer:      defaultDialer,
		httpc:       &http.Client{},
		after:       time.After,
		floor:       DefaultBackoffFloor,
		ceiling:     DefaultBackoffCeiling,
		sseFallback: true,
		logger:      logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})),
		state:       StateClosed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID is the consumer's instance identifier.
func (c *Consumer) ID() string { return c.id }

// State reports the current connection state.
func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins the connect loop. Calling Start on a running or disposed
// consumer is a no-op.
func (c *Consumer) Start() {
	c.mu.Lock()
	if c.cancel != nil || c.state == StateDisposed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()
	go c.run(ctx)
}

// Dispose permanently stops the consumer. Any pending reconnect timer is
// abandoned; no dial happens after Dispose returns and the loop exits.
func (c *Consumer) Dispose() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	if c.state != StateDisposed && cancel == nil {
		// Never started; nothing to unwind.
		c.state = StateDisposed
	}
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Clear asks the server to clear the buffer. Requires an open stream.
func (c *Consumer) Clear(label string) error {
	return c.writeControl(map[string]string{"type": "clear", "label": label})
}

// StartSession asks the server to begin a new session. Requires an open
// stream.
func (c *Consumer) StartSession(label string) error {
	return c.writeControl(map[string]string{"type": "session", "label": label})
}

func (c *Consumer) writeControl(msg map[string]string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(msg)
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)
	defer c.setState(StateDisposed)

	delay := c.floor
	firstAttempt := true
	for {
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)
		conn, err := c.dialer(ctx, c.wsURL(), c.header())
		if err != nil {
			if firstAttempt && c.sseFallback {
				firstAttempt = false
				c.logger.Info("websocket unavailable, falling back to SSE", logpkg.Err(err))
				if c.runSSE(ctx) == nil {
					// SSE ran until the consumer was disposed. Done.
					return
				}
				// SSE never came up either; resume the WebSocket loop.
			}
			firstAttempt = false
			c.setState(StateClosed)
			select {
			case <-ctx.Done():
				return
			case <-c.after(delay):
			}
			delay = c.nextDelay(delay)
			continue
		}
		firstAttempt = false

		c.setConn(conn)
		c.setState(StateOpen)
		delay = c.floor

		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		c.readLoop(conn)
		stop()
		_ = conn.Close()
		c.setConn(nil)

		if ctx.Err() != nil {
			return
		}
		c.setState(StateClosed)
		select {
		case <-ctx.Done():
			return
		case <-c.after(delay):
		}
		delay = c.nextDelay(delay)
	}
}

func (c *Consumer) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		c.handlers.dispatch(env)
	}
}

func (c *Consumer) nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > c.ceiling {
		d = c.ceiling
	}
	return d
}

func (c *Consumer) setConn(conn Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Consumer) setState(s State) {
	c.mu.Lock()
	if c.state == s || c.state == StateDisposed {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	if c.handlers.OnState != nil {
		c.handlers.OnState(s)
	}
}

func (c *Consumer) wsURL() string {
	u := c.baseURL + "/v1/logs/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if c.token != "" {
		u += "?token=" + c.token
	}
	return u
}

func (c *Consumer) header() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}
