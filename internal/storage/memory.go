package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory Store. It serves two roles:
// a zero-dependency fallback when no Redis address is configured, and a test
// double whose capacity bound makes the quota-exhaustion path reproducible.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// maxEntries bounds the number of stored keys; 0 means unlimited.
	// Overwrites of existing keys are always allowed.
	maxEntries int
}

// NewMemoryStore creates an unbounded in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// NewBoundedMemoryStore creates a store that rejects new keys with
// ErrStoreFull once maxEntries distinct keys are present.
func NewBoundedMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{data: make(map[string]string), maxEntries: maxEntries}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 {
		if _, exists := s.data[key]; !exists && len(s.data) >= s.maxEntries {
			return ErrStoreFull
		}
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Len returns the total number of stored keys across all prefixes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ Store = (*MemoryStore)(nil)
