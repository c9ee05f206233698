package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/goattr/pkg/types"
)

// Statistics describes the outcome of one Scan call
type Statistics struct {
	FilesParsed    int
	FilesUnchanged int
	FilesRemoved   int
	FilesFailed    int
	Classes        int
	Duration       time.Duration
	ErrorMessages  []string
}

// module is a go.mod found above a scanned directory
type module struct {
	Path string
	Root string
}

// fileEntry is one parsed source file
type fileEntry struct {
	path       string
	dir        string
	importPath string
	hash       uint64
	result     *types.ParseResult
}

// Scan walks the directories, parses new or modified Go files, and drops
// files that disappeared since the previous scan of the same directory.
// Unparsable directives and syntax errors are reported in the statistics;
// they never fail the scan.
func (idx *Index) Scan(ctx context.Context, dirs ...string) (*Statistics, error) {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	start := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	// go.mod files are reread on every scan
	idx.modMu.Lock()
	clear(idx.modules)
	idx.modMu.Unlock()

	roots := make([]string, 0, len(dirs))
	var files []string
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		if _, err := idx.moduleFor(abs); err != nil {
			return nil, err
		}

		found, err := idx.discoverFiles(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to discover files: %w", err)
		}
		roots = append(roots, abs)
		files = append(files, found...)
	}

	entries, err := idx.parseFiles(ctx, files, stats)
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.path] = struct{}{}
		idx.files[entry.path] = entry
	}
	for path := range idx.files {
		if _, ok := present[path]; ok {
			continue
		}
		if slices.ContainsFunc(roots, func(root string) bool { return within(path, root) }) {
			delete(idx.files, path)
			stats.FilesRemoved++
		}
	}
	idx.rebuild()
	stats.Classes = len(idx.classIDs)
	idx.mu.Unlock()

	stats.Duration = time.Since(start)
	idx.logger.Debug("scan complete",
		"dirs", len(roots),
		"parsed", stats.FilesParsed,
		"unchanged", stats.FilesUnchanged,
		"removed", stats.FilesRemoved,
		"classes", stats.Classes,
		"duration", stats.Duration)
	return stats, nil
}

// discoverFiles finds the Go files under root the go tool would build
func (idx *Index) discoverFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if !idx.cfg.IncludeVendor && name == "vendor" {
				return filepath.SkipDir
			}
			// Hidden, underscore and testdata directories are ignored by the go tool
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if !idx.cfg.IncludeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// parseFiles parses the files concurrently, reusing entries whose content
// hash did not change
func (idx *Index) parseFiles(ctx context.Context, files []string, stats *Statistics) ([]*fileEntry, error) {
	var (
		parsed    atomic.Int32
		unchanged atomic.Int32
		failed    atomic.Int32
		mu        sync.Mutex
	)

	entries := make([]*fileEntry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.cfg.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			entry, reused, err := idx.parseFile(path)
			if err != nil {
				failed.Add(1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				return nil
			}

			if reused {
				unchanged.Add(1)
			} else {
				parsed.Add(1)
				if entry.result.HasErrors() {
					mu.Lock()
					for _, pe := range entry.result.Errors {
						stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s:%d: %s", path, pe.Line, pe.Message))
					}
					mu.Unlock()
					idx.logger.Warn("problems in source file", "file", path, "errors", len(entry.result.Errors))
				}
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.FilesParsed = int(parsed.Load())
	stats.FilesUnchanged = int(unchanged.Load())
	stats.FilesFailed = int(failed.Load())
	slices.Sort(stats.ErrorMessages)

	return slices.DeleteFunc(entries, func(e *fileEntry) bool { return e == nil }), nil
}

// parseFile parses one file, or returns the indexed entry when its content
// is unchanged
func (idx *Index) parseFile(path string) (*fileEntry, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	hash := xxhash.Sum64(content)

	dir := filepath.Dir(path)
	importPath, err := idx.importPath(dir)
	if err != nil {
		return nil, false, err
	}

	idx.mu.RLock()
	previous, ok := idx.files[path]
	idx.mu.RUnlock()
	if ok && previous.hash == hash && previous.importPath == packagePath(importPath, previous.result) {
		return previous, true, nil
	}

	result := idx.parser.ParseSource(path, content)

	return &fileEntry{
		path:       path,
		dir:        dir,
		importPath: packagePath(importPath, result),
		hash:       hash,
		result:     result,
	}, false, nil
}

// packagePath is the import path of the package a file declares; external
// test packages get a "_test" suffix
func packagePath(importPath string, result *types.ParseResult) string {
	if result != nil && strings.HasSuffix(result.PackageName, "_test") {
		return importPath + "_test"
	}
	return importPath
}

// importPath derives the import path of a directory from the nearest go.mod
func (idx *Index) importPath(dir string) (string, error) {
	mod, err := idx.moduleFor(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(mod.Root, dir)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return mod.Path, nil
	}
	return mod.Path + "/" + filepath.ToSlash(rel), nil
}

// moduleFor finds the go.mod governing dir, memoised per directory
func (idx *Index) moduleFor(dir string) (module, error) {
	idx.modMu.Lock()
	defer idx.modMu.Unlock()

	var visited []string
	for current := dir; ; current = filepath.Dir(current) {
		if mod, ok := idx.modules[current]; ok {
			for _, v := range visited {
				idx.modules[v] = mod
			}
			return mod, nil
		}
		visited = append(visited, current)

		content, err := os.ReadFile(filepath.Join(current, "go.mod"))
		if err == nil {
			path := modfile.ModulePath(content)
			if path == "" {
				return module{}, fmt.Errorf("%s/go.mod has no module directive", current)
			}
			mod := module{Path: path, Root: current}
			for _, v := range visited {
				idx.modules[v] = mod
			}
			for known, root := range idx.roots {
				if root == current && known != path {
					delete(idx.roots, known)
				}
			}
			idx.roots[path] = current
			return mod, nil
		}
		if !os.IsNotExist(err) {
			return module{}, fmt.Errorf("failed to read go.mod: %w", err)
		}

		if filepath.Dir(current) == current {
			return module{}, fmt.Errorf("%w: no go.mod found above %s", ErrNoModule, dir)
		}
	}
}

// within reports whether path is root or lies below it
func within(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}
