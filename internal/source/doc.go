// Package source indexes Go source trees for descriptor discovery.
//
// An Index implements the discover.Introspector and discover.Enumerator
// interfaces over scanned code:
//
//	idx := source.New(source.Config{}, logger)
//	stats, err := idx.Scan(ctx, "/path/to/module")
//	if err != nil {
//	    return err
//	}
//	meta, err := idx.ResolveMeta("example.com/app/attrs.Route")
//
// # Mapping
//
// A class is a named non-interface type, identified by its import path and
// name ("example.com/app/models.User"). Its parent is the first embedded
// field that is itself an indexed class. Methods promoted from the parent
// chain count as methods of the class.
//
// Import paths come from the nearest go.mod. Directories the go tool ignores
// (hidden, "_"-prefixed, testdata) are skipped, as are vendor directories
// and test files unless configured otherwise.
//
// # Rescans
//
// Files are keyed by content hash; a rescan only parses files that changed
// and drops files that disappeared below the scanned directories.
package source
