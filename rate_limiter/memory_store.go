package rate_limiter

import (
	"context"
	"sync"
)

// ensure that MemoryStore satisfies the Store interface
var _ Store = &MemoryStore{}

// MemoryStore keeps values in a process-local map. State lasts as long as
// the process, the same way a browser session's storage lasts as long as
// the profile.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
