package parse

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/dshills/goattr/internal/discover"
	"github.com/dshills/goattr/internal/storage"
	"github.com/dshills/goattr/pkg/types"
)

// Key namespaces separating operations that share a configuration
const (
	methodsKeyPrefix = "methods@"
	usagesKeyPrefix  = "usages@"
	allKeyPrefix     = "all@"
)

// Parse is an immutable discovery configuration. Every mutator returns a
// modified copy; the receiver is never changed.
type Parse struct {
	descriptorType string
	target         string
	ascend         bool
	store          storage.Store

	introspector discover.Introspector
	enumerator   discover.Enumerator
	logger       *log.Logger

	// meta is shared by every configuration derived from the same New call
	meta *metaMemo
}

type metaMemo struct {
	once  sync.Once
	value types.DescriptorMeta
	err   error
}

// New creates a configuration for descriptorType without target, ascent or cache
func New(descriptorType string, introspector discover.Introspector, enumerator discover.Enumerator) Parse {
	return Parse{
		descriptorType: descriptorType,
		introspector:   introspector,
		enumerator:     enumerator,
		logger:         log.Default().WithPrefix("parse"),
		meta:           &metaMemo{},
	}
}

// On targets a single class
func (p Parse) On(class string) Parse {
	p.target = class
	return p
}

// Ascend enables walking the parent chain in class-level discovery
func (p Parse) Ascend() Parse {
	p.ascend = true
	return p
}

// WithCache attaches a cache store
func (p Parse) WithCache(store storage.Store) Parse {
	p.store = store
	return p
}

// WithoutCache detaches the cache store
func (p Parse) WithoutCache() Parse {
	p.store = nil
	return p
}

// WithLogger replaces the logger
func (p Parse) WithLogger(logger *log.Logger) Parse {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// DescriptorType returns the descriptor type being discovered
func (p Parse) DescriptorType() string { return p.descriptorType }

// Target returns the targeted class, empty when none
func (p Parse) Target() string { return p.target }

// Ascending reports whether ascent is enabled
func (p Parse) Ascending() bool { return p.ascend }

// Cached reports whether a cache store is attached
func (p Parse) Cached() bool { return p.store != nil }

// Meta resolves the placement rules of the descriptor type. The outcome,
// error included, is computed once.
func (p Parse) Meta() (types.DescriptorMeta, error) {
	if p.meta == nil {
		return p.introspector.ResolveMeta(p.descriptorType)
	}
	p.meta.once.Do(func() {
		p.meta.value, p.meta.err = p.introspector.ResolveMeta(p.descriptorType)
	})
	return p.meta.value, p.meta.err
}

// FindUsages returns the classes under roots that carry the descriptor on
// themselves, on an ancestor when ascending, or on a method
func (p Parse) FindUsages(ctx context.Context, roots ...string) ([]string, error) {
	key := usagesKeyPrefix + p.CacheKey(roots...)
	if usages, ok := load[string](ctx, p, key); ok {
		return usages, nil
	}

	classes, err := p.enumerator.ClassesUnder(ctx, roots)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate classes: %w", err)
	}

	condition := discover.Condition{
		Introspector:   p.introspector,
		DescriptorType: p.descriptorType,
		Ascend:         p.ascend,
	}

	var usages []string
	for _, class := range classes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if condition.Satisfies(class) {
			usages = append(usages, class)
		}
	}
	p.logger.Debug("scanned classes", "descriptor", p.descriptorType, "candidates", len(classes), "usages", len(usages))

	save(ctx, p, key, usages)
	return usages, nil
}

// Get runs class-level discovery on the target. A nil result means nothing
// was found.
func (p Parse) Get(ctx context.Context) (*types.DiscoveredResult, error) {
	if p.target == "" {
		return nil, &types.NoTargetClassError{Operation: "Get"}
	}

	return p.single(ctx, p.CacheKey(), func(meta types.DescriptorMeta) *types.DiscoveredResult {
		return discover.OnClass(p.introspector, p.descriptorType, p.target, p.ascend, meta.Repeatable)
	})
}

// InMethods runs method-level discovery on the target. It never ascends.
func (p Parse) InMethods(ctx context.Context) (*types.DiscoveredResult, error) {
	if p.target == "" {
		return nil, &types.NoTargetClassError{Operation: "InMethods"}
	}

	return p.single(ctx, methodsKeyPrefix+p.CacheKey(), func(types.DescriptorMeta) *types.DiscoveredResult {
		return discover.InMethods(p.introspector, p.descriptorType, p.target)
	})
}

func (p Parse) single(ctx context.Context, key string, run func(types.DescriptorMeta) *types.DiscoveredResult) (*types.DiscoveredResult, error) {
	if cached, ok := load[types.DiscoveredResult](ctx, p, key); ok {
		if len(cached) == 0 {
			return nil, nil
		}
		return &cached[0], nil
	}

	meta, err := p.Meta()
	if err != nil {
		return nil, err
	}

	result := run(meta)

	var wrapped []types.DiscoveredResult
	if result != nil {
		wrapped = []types.DiscoveredResult{*result}
	}
	save(ctx, p, key, wrapped)
	return result, nil
}

// All discovers class- and method-level descriptors of every usage under
// roots. The whole list is cached as one unit; per-class lookups bypass the
// cache.
func (p Parse) All(ctx context.Context, roots ...string) ([]types.DiscoveredTarget, error) {
	key := allKeyPrefix + p.CacheKey(roots...)
	if cached, ok := load[types.DiscoveredTarget](ctx, p, key); ok {
		if len(cached) == 0 {
			return nil, nil
		}
		return cached, nil
	}

	meta, err := p.Meta()
	if err != nil {
		return nil, err
	}

	usages, err := p.FindUsages(ctx, roots...)
	if err != nil {
		return nil, err
	}

	var all []types.DiscoveredTarget
	for _, class := range usages {
		scoped := p.WithoutCache().On(class)
		target := types.DiscoveredTarget{Target: class}

		if meta.OnClass {
			result, err := scoped.Get(ctx)
			if err != nil {
				return nil, err
			}
			if result != nil {
				target.OnClass = result.Descriptors
			}
		}

		if meta.OnMethod {
			result, err := scoped.InMethods(ctx)
			if err != nil {
				return nil, err
			}
			if result != nil {
				target.OnMethods = result.Methods
			}
		}

		if len(target.OnClass) > 0 || len(target.OnMethods) > 0 {
			all = append(all, target)
		}
	}

	save(ctx, p, key, all)
	return all, nil
}

// CacheKey derives the key of a call shape from the descriptor type, ascent,
// target and roots. Roots are joined in the order given. The "methods@",
// "usages@" and "all@" prefixes are added by InMethods, FindUsages and All
// and are not part of the returned key.
func (p Parse) CacheKey(roots ...string) string {
	var b strings.Builder
	b.WriteString(p.descriptorType)
	b.WriteString("::")

	if p.ascend {
		b.WriteString("ascend:")
	}
	if p.target != "" {
		b.WriteString(hash(p.target))
		b.WriteString(":")
	}

	if len(roots) > 0 {
		b.WriteString(hash(strings.Join(roots, "|")))
		return b.String()
	}
	return strings.TrimSuffix(b.String(), ":")
}

func hash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
