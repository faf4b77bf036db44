package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	logpkg "github.com/rzbill/siphon/pkg/log"
)

// ProducerOption customizes a Producer.
type ProducerOption func(*Producer)

// WithProducerToken sends the shared secret on every push.
func WithProducerToken(token string) ProducerOption {
	return func(p *Producer) { p.rest.token = token }
}

// WithSource tags every entry with an origin name.
func WithSource(source string) ProducerOption {
	return func(p *Producer) { p.source = source }
}

// WithClientID overrides the generated client id.
func WithClientID(id string) ProducerOption {
	return func(p *Producer) { p.clientID = id }
}

// WithProducerLogger routes delivery diagnostics to the given logger.
// By default delivery failures are silent, matching the contract that
// logging never disrupts the instrumented program.
func WithProducerLogger(l logpkg.Logger) ProducerOption {
	return func(p *Producer) { p.logger = l }
}

// WithPushTimeout bounds each delivery attempt.
func WithPushTimeout(d time.Duration) ProducerOption {
	return func(p *Producer) { p.timeout = d }
}

// Producer pushes log entries to a siphon server. Delivery is
// best-effort: network and server failures are absorbed so the
// instrumented program never has to care.
type Producer struct {
	rest     *Client
	clientID string
	source   string
	timeout  time.Duration
	logger   logpkg.Logger

	mu        sync.Mutex
	sessionID string
}

// NewProducer builds a producer for the server at baseURL.
func NewProducer(baseURL string, opts ...ProducerOption) *Producer {
	p := &Producer{
		rest:     NewClient(baseURL),
		clientID: uuid.NewString(),
		timeout:  5 * time.Second,
		logger:   logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ClientID is the identity attached to every pushed entry.
func (p *Producer) ClientID() string { return p.clientID }

// SetSession pins entries to a session id. An empty id reverts to the
// server's current session.
func (p *Producer) SetSession(id string) {
	p.mu.Lock()
	p.sessionID = id
	p.mu.Unlock()
}

// Push delivers one entry, filling in the producer's identity fields.
func (p *Producer) Push(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if _, err := p.rest.Push(ctx, p.fill(e)); err != nil {
		p.logger.Debug("push failed", logpkg.Err(err))
	}
}

// PushBatch delivers a batch, filling in the producer's identity fields.
func (p *Producer) PushBatch(entries []Entry) {
	for i := range entries {
		entries[i] = p.fill(entries[i])
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if _, _, err := p.rest.PushBatch(ctx, entries); err != nil {
		p.logger.Debug("batch push failed", logpkg.Err(err))
	}
}

// Debug pushes a debug-level entry.
func (p *Producer) Debug(message string, data any) { p.Push(Entry{Level: "debug", Message: message, Data: data}) }

// Info pushes an info-level entry.
func (p *Producer) Info(message string, data any) { p.Push(Entry{Level: "info", Message: message, Data: data}) }

// Warn pushes a warn-level entry.
func (p *Producer) Warn(message string, data any) { p.Push(Entry{Level: "warn", Message: message, Data: data}) }

// Error pushes an error-level entry.
func (p *Producer) Error(message string, data any) { p.Push(Entry{Level: "error", Message: message, Data: data}) }

func (p *Producer) fill(e Entry) Entry {
	if e.ClientID == "" {
		e.ClientID = p.clientID
	}
	if e.Source == "" {
		e.Source = p.source
	}
	if e.SessionID == "" {
		p.mu.Lock()
		e.SessionID = p.sessionID
		p.mu.Unlock()
	}
	return e
}
