package session

import (
	"sync"

	"github.com/rzbill/siphon/internal/model"
	"github.com/rzbill/siphon/pkg/id"
)

// DefaultLabel names the implicit session a fresh manager starts with.
const DefaultLabel = "default"

// Manager owns the session records. All methods are safe for concurrent
// use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	order    []string
	current  string
}

// NewManager returns a Manager with an implicit "default" session already
// active.
func NewManager() *Manager {
	m := &Manager{sessions: make(map[string]*model.Session)}
	m.StartSession(DefaultLabel)
	return m
}

// StartSession ends the current session, creates a new one with a fresh
// id, activates it, and returns a copy. It never fails.
func (m *Manager) StartSession(label string) model.Session {
	if label == "" {
		label = "session"
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := model.NowISO()
	if cur, ok := m.sessions[m.current]; ok {
		cur.EndedAt = now
	}
	s := &model.Session{
		ID:        id.New(label),
		Label:     label,
		StartedAt: now,
	}
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	m.current = s.ID
	return *s
}

// RecordEntry increments the entry count of the named session, or of the
// current session when sessionID is empty. Unknown ids are a silent no-op:
// entries may reference sessions the caller observed before a clear.
func (m *Manager) RecordEntry(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID == "" {
		sessionID = m.current
	}
	if s, ok := m.sessions[sessionID]; ok {
		s.EntryCount++
	}
}

// CurrentSession returns a copy of the active session.
func (m *Manager) CurrentSession() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sessions[m.current]
}

// ListSessions returns copies of all known sessions in creation order.
func (m *Manager) ListSessions() []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Session, 0, len(m.order))
	for _, sid := range m.order {
		out = append(out, *m.sessions[sid])
	}
	return out
}
