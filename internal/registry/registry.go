package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/goattr/pkg/types"
)

var (
	// ErrEmptyName is returned when an empty class, method or descriptor
	// identifier is provided
	ErrEmptyName = errors.New("registry: empty name provided")
	// ErrConflictingRegistration indicates an attempt to redefine a class
	// with a different parent
	ErrConflictingRegistration = errors.New("registry: conflicting class registration")
)

// Registry is an in-memory, programmatically populated codebase model. It
// answers the same questions as a scanned source index and is safe for
// concurrent use.
type Registry struct {
	mu sync.RWMutex
	// descriptors maps descriptor type identifiers to their placement rules
	descriptors map[string]types.DescriptorMeta
	// classes maps class identifiers to their declarations
	classes map[string]*class
	// order keeps class identifiers in definition order
	order []string
}

type class struct {
	parent      string
	methods     []string
	annotations []types.Descriptor
	onMethods   map[string][]types.Descriptor
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		descriptors: make(map[string]types.DescriptorMeta),
		classes:     make(map[string]*class),
	}
}

// DefineDescriptor registers a descriptor type. Redefinition replaces the meta.
func (r *Registry) DefineDescriptor(id string, meta types.DescriptorMeta) error {
	if id == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[id] = meta
	return nil
}

// DefineClass registers a class with an optional parent. It is idempotent for
// the same (class, parent) pair.
func (r *Registry) DefineClass(id, parent string) error {
	if id == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.classes[id]; ok {
		if c.parent == parent {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrConflictingRegistration, id)
	}

	r.classes[id] = &class{parent: parent, onMethods: make(map[string][]types.Descriptor)}
	r.order = append(r.order, id)
	return nil
}

// AddMethod declares methods on a class, keeping the first declaration order
func (r *Registry) AddMethod(classID string, methods ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookup(classID)
	if err != nil {
		return err
	}
	for _, m := range methods {
		if m == "" {
			return ErrEmptyName
		}
		c.addMethod(m)
	}
	return nil
}

// AnnotateClass attaches descriptor instances to a class in order
func (r *Registry) AnnotateClass(classID string, descriptors ...types.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookup(classID)
	if err != nil {
		return err
	}
	c.annotations = append(c.annotations, descriptors...)
	return nil
}

// AnnotateMethod attaches descriptor instances to a method, declaring the
// method if needed
func (r *Registry) AnnotateMethod(classID, method string, descriptors ...types.Descriptor) error {
	if method == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookup(classID)
	if err != nil {
		return err
	}
	c.addMethod(method)
	c.onMethods[method] = append(c.onMethods[method], descriptors...)
	return nil
}

// DescriptorsOn returns the instances of descriptorType on a class or method.
// Inherited methods report the instances of their declaring class.
func (r *Registry) DescriptorsOn(target types.Target, descriptorType string) ([]types.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.lookup(target.Class)
	if err != nil {
		return nil, err
	}

	source := c.annotations
	if target.IsMethod() {
		declaring := r.declaring(target.Class, target.Method)
		if declaring == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownMethod, target)
		}
		source = declaring.onMethods[target.Method]
	}

	var out []types.Descriptor
	for _, d := range source {
		if d.Type == descriptorType {
			out = append(out, d)
		}
	}
	return out, nil
}

// ParentOf returns the parent of a class if it is itself registered
func (r *Registry) ParentOf(classID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.lookup(classID)
	if err != nil {
		return "", false, err
	}
	if _, ok := r.classes[c.parent]; !ok {
		return "", false, nil
	}
	return c.parent, true, nil
}

// MethodsOf lists own methods first, then inherited ones not overridden
func (r *Registry) MethodsOf(classID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.lookup(classID)
	if err != nil {
		return nil, err
	}

	var methods []string
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	for id := classID; c != nil; {
		visited[id] = struct{}{}
		for _, m := range c.methods {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				methods = append(methods, m)
			}
		}
		if _, ok := visited[c.parent]; ok {
			break
		}
		id, c = c.parent, r.classes[c.parent]
	}
	return methods, nil
}

// ResolveMeta returns the placement rules of a descriptor type. A registered
// class that was never defined as a descriptor is not a descriptor type.
func (r *Registry) ResolveMeta(descriptorType string) (types.DescriptorMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if meta, ok := r.descriptors[descriptorType]; ok {
		return meta, nil
	}
	if _, ok := r.classes[descriptorType]; ok {
		return types.DescriptorMeta{}, fmt.Errorf("%w: %s", types.ErrNotADescriptorType, descriptorType)
	}
	return types.DescriptorMeta{}, fmt.Errorf("%w: %s", types.ErrUnknownDescriptorType, descriptorType)
}

// ClassesUnder returns the classes whose package lies under one of the
// roots, in definition order. No roots selects every class.
func (r *Registry) ClassesUnder(ctx context.Context, roots []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, id := range r.order {
		if len(roots) == 0 || underAny(id, roots) {
			out = append(out, id)
		}
	}
	return out, nil
}

// ClassesInNamespace returns the classes under a single namespace
func (r *Registry) ClassesInNamespace(ctx context.Context, namespace string) ([]string, error) {
	return r.ClassesUnder(ctx, []string{namespace})
}

// Count returns the number of registered classes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

// Reset clears all registered classes and descriptor types
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = make(map[string]types.DescriptorMeta)
	r.classes = make(map[string]*class)
	r.order = nil
}

// lookup must be called with r.mu held
func (r *Registry) lookup(classID string) (*class, error) {
	if classID == "" {
		return nil, ErrEmptyName
	}
	c, ok := r.classes[classID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownClass, classID)
	}
	return c, nil
}

// declaring finds the nearest class in the chain that declares method.
// Must be called with r.mu held.
func (r *Registry) declaring(classID, method string) *class {
	visited := make(map[string]struct{})
	for id := classID; ; {
		c, ok := r.classes[id]
		if !ok {
			return nil
		}
		if _, ok := visited[id]; ok {
			return nil
		}
		visited[id] = struct{}{}
		if c.hasMethod(method) {
			return c
		}
		id = c.parent
	}
}

func (c *class) addMethod(method string) {
	if !c.hasMethod(method) {
		c.methods = append(c.methods, method)
	}
}

func (c *class) hasMethod(method string) bool {
	for _, m := range c.methods {
		if m == method {
			return true
		}
	}
	return false
}

// underAny reports whether the package of id equals or nests below a root
func underAny(id string, roots []string) bool {
	pkg := id
	if i := strings.LastIndex(id, "."); i >= 0 {
		pkg = id[:i]
	}
	for _, root := range roots {
		root = strings.TrimSuffix(root, "/")
		if pkg == root || strings.HasPrefix(pkg, root+"/") {
			return true
		}
	}
	return false
}
