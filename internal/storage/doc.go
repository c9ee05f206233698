// Package storage provides cache stores for discovery results.
//
// A Store keeps a list of JSON documents per key. Two implementations exist:
//   - MemoryStore: process-local, bounded by LRU eviction
//   - SQLiteStorage: persistent, shared between runs
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations, compared as semantic versions
//   - cache_entries: payload per key with value count, size and timestamps
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.goattr/cache.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Put(ctx, key, []json.RawMessage{payload})
//	values, err := store.Get(ctx, key)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // miss
//	}
//
// # Invalidation
//
// Entries never expire. Stores implementing Maintainer support manual
// invalidation through Delete and Clear.
//
// # Build Modes
//
// The SQLite driver is selected at build time:
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...  # github.com/mattn/go-sqlite3
//	CGO_ENABLED=0 go build ./...                   # modernc.org/sqlite
//
// Both modes use WAL journaling and a single connection, which SQLite
// requires for a shared in-memory database.
package storage
