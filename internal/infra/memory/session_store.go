package memory

import (
	"context"
	"sync"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewSessionStore() *SessionStore {
	return &SessionStore{blobs: make(map[string][]byte)}
}

func (s *SessionStore) Load(_ context.Context, nic string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[nic]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (s *SessionStore) Save(_ context.Context, nic string, blob []byte) error {
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[nic] = stored
	return nil
}

func (s *SessionStore) Clear(_ context.Context, nic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, nic)
	return nil
}
