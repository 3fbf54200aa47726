package credstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair in process memory. It does not survive a restart.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Read implements Store.
func (s *MemoryStore) Read(_ context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, okToken := s.data[KeyToken]
	user, okUser := s.data[KeyUser]
	if !okToken || !okUser || token == "" || user == "" {
		return "", nil, ErrNotFound
	}
	return token, []byte(user), nil
}

// Write implements Store.
func (s *MemoryStore) Write(_ context.Context, token string, user []byte) error {
	if err := validPair(token, user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[KeyToken] = token
	s.data[KeyUser] = string(user)
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, KeyToken)
	delete(s.data, KeyUser)
	return nil
}

// Set writes a single raw key. It bypasses the pair invariant and exists so
// tests can seed half-written or corrupt state.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Keys returns the keys currently present.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
