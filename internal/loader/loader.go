package loader

import (
	"fmt"
	"strings"

	"github.com/dshills/goattr/internal/discover"
	"github.com/dshills/goattr/pkg/types"
)

// LoadMode selects how a rule reads its descriptor from a class
type LoadMode int

const (
	// SingleValue keeps the first class-level instance
	SingleValue LoadMode = iota + 1
	// RepeatableCollection keeps every class-level instance
	RepeatableCollection
	// PerMethodMapping groups instances by the method carrying them
	PerMethodMapping
)

var modeNames = map[LoadMode]string{
	SingleValue:          "single",
	RepeatableCollection: "repeatable",
	PerMethodMapping:     "methods",
}

func (m LoadMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("LoadMode(%d)", int(m))
}

// ParseLoadMode converts a mode name back into a LoadMode
func ParseLoadMode(name string) (LoadMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown load mode %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (m LoadMode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown load mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *LoadMode) UnmarshalText(text []byte) error {
	mode, err := ParseLoadMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Transform post-processes the data a rule extracted
type Transform func(value any) (any, error)

// Rule is one descriptor read performed for every loaded class
type Rule struct {
	Descriptor string
	Mode       LoadMode
	Ascend     bool
	Transform  Transform
}

// Binder maps an alias to the class it stands for
type Binder interface {
	ResolveBinding(id string) string
}

// IdentityBinder resolves every id to itself
type IdentityBinder struct{}

func (IdentityBinder) ResolveBinding(id string) string { return id }

// Bindings is a fixed alias table; unknown ids resolve to themselves
type Bindings map[string]string

func (b Bindings) ResolveBinding(id string) string {
	if target, ok := b[id]; ok && target != "" {
		return target
	}
	return id
}

// Option configures a Loader
type Option func(*Loader)

// WithBinder sets the alias resolver used by Load
func WithBinder(b Binder) Option {
	return func(l *Loader) {
		if b != nil {
			l.binder = b
		}
	}
}

// Loader extracts a fixed set of descriptors from classes
type Loader struct {
	introspector discover.Introspector
	binder       Binder
	rules        []Rule
}

// New creates a Loader without rules
func New(introspector discover.Introspector, opts ...Option) *Loader {
	l := &Loader{
		introspector: introspector,
		binder:       IdentityBinder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends a rule. Rules run in the order they were added.
func (l *Loader) Add(descriptor string, mode LoadMode, ascend bool, transform Transform) *Loader {
	l.rules = append(l.rules, Rule{
		Descriptor: descriptor,
		Mode:       mode,
		Ascend:     ascend,
		Transform:  transform,
	})
	return l
}

// Rules returns a copy of the configured rules
func (l *Loader) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// Load runs every rule against class and returns the non-empty results keyed
// by descriptor type. A failing transform aborts the load.
func (l *Loader) Load(class string) (map[string]any, error) {
	class = l.binder.ResolveBinding(class)

	result := make(map[string]any)
	for _, rule := range l.rules {
		data, ok, err := l.read(rule, class)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if rule.Transform != nil {
			data, err = rule.Transform(data)
			if err != nil {
				return nil, fmt.Errorf("transform %s (%s) on %s: %w", rule.Descriptor, rule.Mode, class, err)
			}
		}
		result[rule.Descriptor] = data
	}
	return result, nil
}

func (l *Loader) read(rule Rule, class string) (any, bool, error) {
	switch rule.Mode {
	case SingleValue:
		found := discover.OnClass(l.introspector, rule.Descriptor, class, rule.Ascend, false)
		if found.Empty() {
			return nil, false, nil
		}
		return found.Descriptors[0], true, nil

	case RepeatableCollection:
		found := discover.OnClass(l.introspector, rule.Descriptor, class, rule.Ascend, true)
		if found.Empty() {
			return nil, false, nil
		}
		return found.Descriptors, true, nil

	case PerMethodMapping:
		found := discover.InMethods(l.introspector, rule.Descriptor, class)
		if found.Empty() {
			return nil, false, nil
		}
		byMethod := make(map[string][]types.Descriptor, len(found.Methods))
		for _, m := range found.Methods {
			byMethod[m.Method] = m.Descriptors
		}
		return byMethod, true, nil
	}

	return nil, false, fmt.Errorf("rule %s: unknown load mode %s", rule.Descriptor, rule.Mode)
}
