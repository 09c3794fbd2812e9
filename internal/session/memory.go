package session

import (
	"sync"

	"floradex/internal/flora"
)

// MemoryStore is an in-memory implementation of flora.SessionStore, used in
// tests and for the "memory" config type. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *flora.Session
}

var _ flora.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the stored session, or nil when none exists.
func (m *MemoryStore) Get() (*flora.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

// Set replaces the stored session wholesale.
func (m *MemoryStore) Set(s *flora.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sess = &cp
	return nil
}

// Clear removes the stored session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
