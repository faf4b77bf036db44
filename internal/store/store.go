package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rzbill/siphon/internal/broadcast"
	"github.com/rzbill/siphon/internal/buffer"
	"github.com/rzbill/siphon/internal/filter"
	"github.com/rzbill/siphon/internal/metrics"
	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/internal/session"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

// DefaultReadLimit caps reads that specify no limit of their own.
const DefaultReadLimit = 100

// Options configure a Store.
type Options struct {
	// Size is the ring buffer capacity; values below 1 are clamped.
	Size int
	// Logger is optional; a default logger is built when nil.
	Logger logpkg.Logger
	// Metrics is optional; instruments are skipped when nil.
	Metrics *metrics.Metrics
	// ReadLimit caps reads that specify no limit of their own; values
	// below 1 fall back to DefaultReadLimit.
	ReadLimit int
}

// BatchError reports a validation failure for one member of a batch.
type BatchError struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// Store is the relay's log store. All mutation serializes on one mutex;
// events are emitted under that same lock so emission order is append
// order.
type Store struct {
	mu          sync.Mutex
	buf         *buffer.Ring
	sessions    *session.Manager
	bus         *broadcast.Broadcaster
	logger      logpkg.Logger
	metrics     *metrics.Metrics
	readLimit   int
	lastDropped uint64

	// now is the append-time clock, overridable in tests.
	now func() time.Time
}

// New builds a Store with an active "default" session.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	readLimit := opts.ReadLimit
	if readLimit < 1 {
		readLimit = DefaultReadLimit
	}
	return &Store{
		buf:       buffer.New(opts.Size),
		sessions:  session.NewManager(),
		bus:       broadcast.New(),
		logger:    logger.WithComponent("store"),
		metrics:   opts.Metrics,
		readLimit: readLimit,
		now:       time.Now,
	}
}

// On subscribes a handler to one of the store's events (append, clear,
// session) and returns an idempotent unsubscribe function.
func (s *Store) On(event string, handler broadcast.Handler) func() {
	return s.bus.On(event, handler)
}

// Append normalizes and stores one entry: the level is coerced into the
// canonical set, the session resolves to the current one when absent, the
// buffer assigns sequence/timestamp/id, and the append event fires. It
// always succeeds.
func (s *Store) Append(in model.Incoming) model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(in)
}

func (s *Store) appendLocked(in model.Incoming) model.LogEntry {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = s.sessions.CurrentSession().ID
	}
	stored := s.buf.Append(model.LogEntry{
		ID:        in.ID,
		Timestamp: in.Timestamp,
		Level:     model.CoerceLevel(in.Level),
		Message:   in.Message,
		ClientID:  in.ClientID,
		SessionID: sessionID,
		Data:      in.Data,
		Source:    in.Source,
	}, s.now())
	s.sessions.RecordEntry(sessionID)
	s.observeAppend()
	s.bus.Emit(broadcast.EventAppend, stored)
	return stored
}

// AppendPayload decodes a raw JSON payload and appends it. Non-object
// payloads are rejected without touching buffer state.
func (s *Store) AppendPayload(raw []byte) (model.LogEntry, error) {
	in, err := model.DecodeIncoming(raw)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RejectedTotal.Inc()
		}
		return model.LogEntry{}, err
	}
	return s.Append(in), nil
}

// AppendMany applies AppendPayload to each member in order. Entries are
// sequenced independently: a malformed member is reported in the error
// slice and does not roll back or block the others.
func (s *Store) AppendMany(raws []json.RawMessage) ([]model.LogEntry, []BatchError) {
	stored := make([]model.LogEntry, 0, len(raws))
	var errs []BatchError
	for i, raw := range raws {
		e, err := s.AppendPayload(raw)
		if err != nil {
			errs = append(errs, BatchError{Index: i, Err: err})
			continue
		}
		stored = append(stored, e)
	}
	return stored, errs
}

// Clear discards all buffered entries and starts a fresh session with the
// given label (default "session"). The sequence counter survives.
func (s *Store) Clear(label string) model.Session {
	if label == "" {
		label = "session"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Clear()
	s.lastDropped = 0
	if s.metrics != nil {
		s.metrics.BufferEntries.Set(0)
	}
	sess := s.sessions.StartSession(label)
	s.logger.Info("buffer cleared", logpkg.Str("session", sess.ID), logpkg.Str("label", sess.Label))
	s.bus.Emit(broadcast.EventClear, sess)
	return sess
}

// StartSession begins a new session without touching stored entries.
func (s *Store) StartSession(label string) model.Session {
	if label == "" {
		label = "session"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions.StartSession(label)
	s.logger.Info("session started", logpkg.Str("session", sess.ID), logpkg.Str("label", sess.Label))
	s.bus.Emit(broadcast.EventSession, sess)
	return sess
}

// Read pages entries from the buffer. The limit resolves to
// opts.Limit when set, otherwise the explicit limit argument, otherwise
// the store's configured default. The only error is a filter expression
// that does not compile.
func (s *Store) Read(cursor uint32, limit int, opts filter.Options) (buffer.ReadResult, error) {
	pred, err := filter.Build(opts)
	if err != nil {
		return buffer.ReadResult{}, err
	}
	resolved := limit
	if opts.Limit > 0 {
		resolved = opts.Limit
	}
	if resolved <= 0 {
		resolved = s.readLimit
	}
	return s.buf.Read(cursor, resolved, pred), nil
}

// Stats returns the buffer counters.
func (s *Store) Stats() buffer.Stats {
	return s.buf.Stats()
}

// CurrentSession returns the active session.
func (s *Store) CurrentSession() model.Session {
	return s.sessions.CurrentSession()
}

// ListSessions returns all known sessions in creation order.
func (s *Store) ListSessions() []model.Session {
	return s.sessions.ListSessions()
}

// observeAppend updates the instruments after a successful append. Caller
// holds the mutation lock.
func (s *Store) observeAppend() {
	if s.metrics == nil {
		return
	}
	st := s.buf.Stats()
	s.metrics.AppendsTotal.Inc()
	s.metrics.BufferEntries.Set(float64(st.Count))
	if st.Dropped > s.lastDropped {
		s.metrics.DroppedTotal.Add(float64(st.Dropped - s.lastDropped))
		s.lastDropped = st.Dropped
	}
}
