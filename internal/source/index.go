package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/goattr/internal/parser"
	"github.com/dshills/goattr/pkg/types"
)

// ErrNoModule is returned when a scanned directory is not inside a Go module
var ErrNoModule = errors.New("not inside a Go module")

// Config contains configuration for source scanning
type Config struct {
	Workers       int  // Number of concurrent parsers (default: runtime.NumCPU())
	IncludeTests  bool // Whether to scan _test.go files (default: false)
	IncludeVendor bool // Whether to scan vendor directories (default: false)
}

// Index answers discovery questions about scanned Go source. Classes are
// named non-interface types identified as "importpath.TypeName".
type Index struct {
	parser *parser.Parser
	cfg    Config
	logger *log.Logger

	scanMu sync.Mutex

	modMu   sync.Mutex
	modules map[string]module // directory -> governing module
	roots   map[string]string // module path -> module root

	mu       sync.RWMutex
	files    map[string]*fileEntry
	types    map[string]*typeInfo
	byName   map[string][]string // package name -> import paths
	classIDs []string
}

type typeInfo struct {
	id      string
	pkg     string
	decl    *types.TypeDecl
	file    *fileEntry
	methods []methodInfo
}

type methodInfo struct {
	decl *types.MethodDecl
	file *fileEntry
}

// New creates an empty index. A nil logger uses the default logger.
func New(cfg Config, logger *log.Logger) *Index {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.Default().WithPrefix("source")
	}
	return &Index{
		parser:  parser.New(),
		cfg:     cfg,
		logger:  logger,
		modules: make(map[string]module),
		roots:   make(map[string]string),
		files:   make(map[string]*fileEntry),
		types:   make(map[string]*typeInfo),
		byName:  make(map[string][]string),
	}
}

// rebuild recomputes the lookup tables from the parsed files. Callers hold mu.
func (idx *Index) rebuild() {
	idx.types = make(map[string]*typeInfo)
	idx.byName = make(map[string][]string)
	idx.classIDs = idx.classIDs[:0]

	paths := make([]string, 0, len(idx.files))
	for path := range idx.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	pkgNames := make(map[string]string)
	for _, path := range paths {
		entry := idx.files[path]
		if entry.result.PackageName != "" {
			if _, seen := pkgNames[entry.importPath]; !seen {
				pkgNames[entry.importPath] = entry.result.PackageName
			}
		}
		for i := range entry.result.Types {
			decl := &entry.result.Types[i]
			id := entry.importPath + "." + decl.Name
			// Build-tag variants of one type: first file wins
			if _, dup := idx.types[id]; dup {
				continue
			}
			idx.types[id] = &typeInfo{id: id, pkg: entry.importPath, decl: decl, file: entry}
			if decl.Kind != types.KindInterface {
				idx.classIDs = append(idx.classIDs, id)
			}
		}
	}

	for _, path := range paths {
		entry := idx.files[path]
		for i := range entry.result.Methods {
			decl := &entry.result.Methods[i]
			t, ok := idx.types[entry.importPath+"."+decl.Receiver]
			if !ok || slices.ContainsFunc(t.methods, func(m methodInfo) bool { return m.decl.Name == decl.Name }) {
				continue
			}
			t.methods = append(t.methods, methodInfo{decl: decl, file: entry})
		}
	}

	for importPath, name := range pkgNames {
		idx.byName[name] = append(idx.byName[name], importPath)
	}
	for name := range idx.byName {
		slices.Sort(idx.byName[name])
	}
	slices.Sort(idx.classIDs)
}

// class looks up a non-interface type. Callers hold mu.
func (idx *Index) class(id string) (*typeInfo, error) {
	t, ok := idx.types[id]
	if !ok || t.decl.Kind == types.KindInterface {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownClass, id)
	}
	return t, nil
}

// parent returns the first embedded type that is an indexed class
func (idx *Index) parent(t *typeInfo) (*typeInfo, bool) {
	for _, embed := range t.decl.Embeds {
		p, err := idx.class(idx.resolve(t.file, embed))
		if err == nil {
			return p, true
		}
	}
	return nil, false
}

// DescriptorsOn returns the directives on the class or method that resolve
// to descriptorType. Methods promoted from a parent are read where declared.
func (idx *Index) DescriptorsOn(target types.Target, descriptorType string) ([]types.Descriptor, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, err := idx.class(target.Class)
	if err != nil {
		return nil, err
	}

	if !target.IsMethod() {
		return idx.collect(t.file, t.decl.Directives, descriptorType), nil
	}

	visited := make(map[string]struct{})
	for current := t; current != nil; {
		visited[current.id] = struct{}{}
		for _, m := range current.methods {
			if m.decl.Name == target.Method {
				return idx.collect(m.file, m.decl.Directives, descriptorType), nil
			}
		}
		next, ok := idx.parent(current)
		if !ok {
			break
		}
		if _, seen := visited[next.id]; seen {
			break
		}
		current = next
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnknownMethod, target)
}

// ParentOf returns the first embedded field resolving to an indexed class
func (idx *Index) ParentOf(class string) (string, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, err := idx.class(class)
	if err != nil {
		return "", false, err
	}
	p, ok := idx.parent(t)
	if !ok {
		return "", false, nil
	}
	return p.id, true, nil
}

// MethodsOf returns the class's own methods in source order followed by
// those promoted from its parent chain
func (idx *Index) MethodsOf(class string) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, err := idx.class(class)
	if err != nil {
		return nil, err
	}

	var methods []string
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	for current := t; current != nil; {
		visited[current.id] = struct{}{}
		for _, m := range current.methods {
			if _, dup := seen[m.decl.Name]; dup {
				continue
			}
			seen[m.decl.Name] = struct{}{}
			methods = append(methods, m.decl.Name)
		}
		next, ok := idx.parent(current)
		if !ok {
			break
		}
		if _, loop := visited[next.id]; loop {
			break
		}
		current = next
	}
	return methods, nil
}

// ResolveMeta reads the //@Descriptor marker of a descriptor type
func (idx *Index) ResolveMeta(descriptorType string) (types.DescriptorMeta, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	t, ok := idx.types[descriptorType]
	if !ok {
		return types.DescriptorMeta{}, fmt.Errorf("%w: %s", types.ErrUnknownDescriptorType, descriptorType)
	}

	for _, d := range t.decl.Directives {
		if !parser.IsMeta(d) {
			continue
		}
		meta, err := metaFromDirective(d)
		if err != nil {
			return types.DescriptorMeta{}, fmt.Errorf("%s: %w", descriptorType, err)
		}
		return meta, nil
	}
	return types.DescriptorMeta{}, fmt.Errorf("%w: %s", types.ErrNotADescriptorType, descriptorType)
}

// ClassesUnder scans the directory roots and returns the classes declared
// below them. Without roots every indexed class is returned.
func (idx *Index) ClassesUnder(ctx context.Context, roots []string) ([]string, error) {
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		a, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		abs = append(abs, a)
	}
	if len(abs) > 0 {
		if _, err := idx.Scan(ctx, abs...); err != nil {
			return nil, err
		}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []string
	for _, id := range idx.classIDs {
		if len(abs) == 0 || slices.ContainsFunc(abs, func(root string) bool { return within(idx.types[id].file.path, root) }) {
			out = append(out, id)
		}
	}
	return out, nil
}

// ClassesInNamespace returns the classes whose import path is namespace or
// lies below it. Its directory is scanned first. A namespace that neither
// lies in nor contains a module seen by an earlier scan fails with
// ErrNoModule.
func (idx *Index) ClassesInNamespace(ctx context.Context, namespace string) ([]string, error) {
	namespace = strings.TrimSuffix(namespace, "/")

	dir, known := idx.namespaceDir(namespace)
	if !known {
		return nil, fmt.Errorf("namespace %s: %w", namespace, ErrNoModule)
	}
	if dir != "" {
		if _, err := idx.Scan(ctx, dir); err != nil {
			return nil, err
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []string
	for _, id := range idx.classIDs {
		pkg := idx.types[id].pkg
		if pkg == namespace || strings.HasPrefix(pkg, namespace+"/") {
			out = append(out, id)
		}
	}
	return out, nil
}

// namespaceDir maps an import path onto a directory of a known module. known
// is false when no scanned module lies in or below namespace; dir is empty
// when namespace has no directory of its own.
func (idx *Index) namespaceDir(namespace string) (dir string, known bool) {
	idx.modMu.Lock()
	defer idx.modMu.Unlock()

	best := ""
	for path := range idx.roots {
		if strings.HasPrefix(path, namespace+"/") {
			known = true
		}
		if (namespace == path || strings.HasPrefix(namespace, path+"/")) && len(path) > len(best) {
			best = path
		}
	}
	if best == "" {
		return "", known
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(namespace, best), "/")
	dir = filepath.Join(idx.roots[best], filepath.FromSlash(rel))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", true
	}
	return dir, true
}

// Classes returns every indexed class id in sorted order
func (idx *Index) Classes() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Clone(idx.classIDs)
}

// Modules returns the module paths seen by scans, with their root directories
func (idx *Index) Modules() map[string]string {
	idx.modMu.Lock()
	defer idx.modMu.Unlock()
	out := make(map[string]string, len(idx.roots))
	for path, root := range idx.roots {
		out[path] = root
	}
	return out
}

// FileCount returns the number of indexed source files
func (idx *Index) FileCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.files)
}

// Reset forgets every scanned file and module
func (idx *Index) Reset() {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	idx.modMu.Lock()
	idx.modules = make(map[string]module)
	idx.roots = make(map[string]string)
	idx.modMu.Unlock()

	idx.mu.Lock()
	idx.files = make(map[string]*fileEntry)
	idx.rebuild()
	idx.mu.Unlock()
}
