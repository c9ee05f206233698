//go:build sqlite_cgo

package storage

// Built with CGO_ENABLED=1 go build -tags sqlite_cgo ./...
// The cache database goes through github.com/mattn/go-sqlite3.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver backing SQLiteStorage
	DriverName = "sqlite3"

	// BuildMode names the driver flavour in Stats and version output
	BuildMode = "cgo"
)
