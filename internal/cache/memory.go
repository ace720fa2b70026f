package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// MemoryStore is an in-process Store for tests and cacheless deployments.
// Values round-trip through JSON so behavior matches the Redis store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), now: time.Now}
}

// Get loads the value stored under key, treating expired entries as misses.
func (s *MemoryStore) Get(_ context.Context, key string, into any) (bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expires) {
		return false, nil
	}

	if err := json.Unmarshal(entry.payload, into); err != nil {
		return false, fmt.Errorf("decode cached value %s: %w", key, err)
	}
	return true, nil
}

// Set stores the value under key until the TTL elapses.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}

	s.mu.Lock()
	s.items[key] = memoryEntry{payload: payload, expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}
