//go:build !sqlite_cgo

package storage

// Default build. The cache database goes through modernc.org/sqlite, so no
// C toolchain is needed.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver backing SQLiteStorage
	DriverName = "sqlite"

	// BuildMode names the driver flavour in Stats and version output
	BuildMode = "purego"
)
