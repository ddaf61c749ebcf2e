package testutil

import (
	"sync"

	"cascadelog/internal/cascade"
)

// MemorySessionStore is an in-memory cascade.SessionStore for tests.
type MemorySessionStore struct {
	mu   sync.Mutex
	sess *cascade.Session
}

var _ cascade.SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (*cascade.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, nil
	}
	copied := *s.sess
	return &copied, nil
}

func (s *MemorySessionStore) Save(sess *cascade.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sess = &copied
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
