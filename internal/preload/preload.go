package preload

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dshills/goattr/internal/loader"
)

// Enumerator lists the classes of a namespace
type Enumerator interface {
	ClassesInNamespace(ctx context.Context, namespace string) ([]string, error)
}

// Cache holds descriptor data loaded for every class of the registered
// namespaces. It is populated once, on the first successful Load.
type Cache struct {
	enumerator Enumerator
	logger     *log.Logger

	mu         sync.RWMutex
	namespaces map[string]*loader.Loader
	data       map[string]map[string]any
	loaded     bool
}

// New creates an empty cache. A nil logger uses the default logger.
func New(enumerator Enumerator, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default().WithPrefix("preload")
	}
	return &Cache{
		enumerator: enumerator,
		logger:     logger,
		namespaces: make(map[string]*loader.Loader),
		data:       make(map[string]map[string]any),
	}
}

// AddNamespace registers loaders by namespace. A namespace registered again
// replaces the earlier loader.
func (c *Cache) AddNamespace(namespaces map[string]*loader.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.namespaces, namespaces)
}

// Namespaces returns the registered namespaces in sorted order
func (c *Cache) Namespaces() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.namespaces))
}

// Load enumerates every registered namespace and runs its loader on each
// class found. Once loaded, further calls return immediately; a failure
// leaves the cache unloaded so the next call starts over.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	data := make(map[string]map[string]any)
	for _, namespace := range slices.Sorted(maps.Keys(c.namespaces)) {
		classes, err := c.enumerator.ClassesInNamespace(ctx, namespace)
		if err != nil {
			return fmt.Errorf("failed to enumerate namespace %s: %w", namespace, err)
		}

		l := c.namespaces[namespace]
		for _, class := range classes {
			if err := ctx.Err(); err != nil {
				return err
			}
			loaded, err := l.Load(class)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", class, err)
			}
			data[class] = loaded
		}
		c.logger.Debug("namespace loaded", "namespace", namespace, "classes", len(classes))
	}

	c.data = data
	c.loaded = true
	c.logger.Info("preload complete", "namespaces", len(c.namespaces), "classes", len(data))
	return nil
}

// Get returns the data one descriptor type produced for a class
func (c *Cache) Get(class, descriptor string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[class]
	if !ok {
		return nil, false
	}
	value, ok := entry[descriptor]
	return value, ok
}

// Class returns a copy of everything loaded for a class
func (c *Cache) Class(class string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[class]
	if !ok {
		return nil, false
	}
	return maps.Clone(entry), true
}

// Loaded reports whether Load has completed successfully
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Reset drops the loaded data; registered namespaces are kept
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]map[string]any)
	c.loaded = false
}
