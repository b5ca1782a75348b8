package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, mainly for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	puts int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	v := make([]byte, len(data))
	copy(v, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	s.puts++
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

// Puts returns how many writes the store has accepted.
func (s *MemoryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func (s *MemoryStore) Close() error {
	return nil
}
