package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. State is lost on restart,
// which the flow tolerates: a missing session is simply an idle one.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

// Get returns a copy of the user's session, or a fresh idle session if none exists.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		copied := s
		return &copied, nil
	}
	return NewSession(userID), nil
}

// Put stores a copy of the session.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = *s
	return nil
}

// Clear removes the user's session entirely.
func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
