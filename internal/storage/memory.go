package storage

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds a MemoryStore created with a non-positive size
const DefaultMemoryEntries = 4096

// MemoryStore is a process-local Store with LRU eviction
type MemoryStore struct {
	cache *lru.Cache[string, []json.RawMessage]
}

// NewMemoryStore creates a store holding at most maxEntries keys
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	cache, err := lru.New[string, []json.RawMessage](maxEntries)
	if err != nil {
		// Only reachable with a non-positive size
		cache, _ = lru.New[string, []json.RawMessage](DefaultMemoryEntries)
	}
	return &MemoryStore{cache: cache}
}

// Has reports whether key has an entry without touching its recency
func (m *MemoryStore) Has(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return m.cache.Contains(key), nil
}

// Get returns a copy of the stored values
func (m *MemoryStore) Get(ctx context.Context, key string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return cloneValues(values), nil
}

// Put stores a copy of values
func (m *MemoryStore) Put(ctx context.Context, key string, values []json.RawMessage) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Add(key, cloneValues(values))
	return nil
}

// Delete removes a single key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Remove(key)
	return nil
}

// Clear empties the store
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Purge()
	return nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

// Stats reports the number of keys and the total payload size
func (m *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := &Stats{Backend: "memory"}
	for _, key := range m.cache.Keys() {
		values, ok := m.cache.Peek(key)
		if !ok {
			continue
		}
		stats.Entries++
		for _, v := range values {
			stats.SizeBytes += int64(len(v))
		}
	}
	return stats, nil
}
