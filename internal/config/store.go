package config

import (
	"fmt"
	"os"

	"github.com/dshills/goattr/internal/storage"
)

// OpenStore opens the configured cache backend. The returned store is nil
// for the "none" backend; close is never nil.
func (c *Config) OpenStore() (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Cache.Backend {
	case BackendNone:
		return nil, noop, nil
	case BackendMemory:
		return storage.NewMemoryStore(c.Cache.Size), noop, nil
	case BackendSQLite:
		if err := os.MkdirAll(c.DBPath, 0o755); err != nil {
			return nil, noop, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := storage.NewSQLiteStorage(c.DBFile())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
}
