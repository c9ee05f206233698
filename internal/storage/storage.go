package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key has no stored entry
	ErrNotFound = errors.New("not found")
	// ErrEmptyKey is returned when an operation receives an empty key
	ErrEmptyKey = errors.New("empty cache key")
)

// Store persists lists of JSON documents under string keys. Each call is an
// atomic single-key operation.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	// Get returns ErrNotFound when the key has no entry
	Get(ctx context.Context, key string) ([]json.RawMessage, error)
	// Put replaces the entry stored under key. A nil list is stored as empty.
	Put(ctx context.Context, key string, values []json.RawMessage) error
}

// Maintainer is implemented by stores that support manual invalidation
type Maintainer interface {
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
}

// Entry describes one stored key
type Entry struct {
	Key        string
	ValueCount int
	SizeBytes  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Stats summarizes the contents of a store
type Stats struct {
	Backend   string
	Entries   int
	SizeBytes int64
}

// cloneValues deep-copies a value list so callers cannot mutate stored data
func cloneValues(values []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		out[i] = append(json.RawMessage(nil), v...)
	}
	return out
}
