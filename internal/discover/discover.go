package discover

import (
	"context"

	"github.com/dshills/goattr/pkg/types"
)

// Introspector answers questions about the classes of a codebase
type Introspector interface {
	// DescriptorsOn returns the instances of descriptorType declared directly
	// on the class or method, in declaration order
	DescriptorsOn(target types.Target, descriptorType string) ([]types.Descriptor, error)

	// ParentOf returns the parent class; ok is false at the top of the chain
	ParentOf(class string) (parent string, ok bool, err error)

	// MethodsOf returns the methods of the class in declaration order,
	// including inherited ones
	MethodsOf(class string) ([]string, error)

	// ResolveMeta describes where descriptorType may be placed. It fails with
	// types.ErrUnknownDescriptorType or types.ErrNotADescriptorType.
	ResolveMeta(descriptorType string) (types.DescriptorMeta, error)
}

// Enumerator lists the classes found under source roots or namespaces
type Enumerator interface {
	ClassesUnder(ctx context.Context, roots []string) ([]string, error)
	ClassesInNamespace(ctx context.Context, namespace string) ([]string, error)
}

// OnClass collects the instances of descriptorType declared on class. With
// ascend set the parent chain is walked until it ends, or, for
// non-repeatable descriptors, until a level yields something. Introspection
// failures produce a nil result.
func OnClass(in Introspector, descriptorType, class string, ascend, repeatable bool) *types.DiscoveredResult {
	var found []types.Descriptor

	visited := make(map[string]struct{})
	current := class
	for {
		visited[current] = struct{}{}

		level, err := in.DescriptorsOn(types.Target{Class: current}, descriptorType)
		if err != nil {
			return nil
		}
		found = append(found, level...)

		if len(found) > 0 && !repeatable {
			break
		}
		if !ascend {
			break
		}

		parent, ok, err := in.ParentOf(current)
		if err != nil {
			return nil
		}
		if !ok {
			break
		}
		if _, seen := visited[parent]; seen {
			break
		}
		current = parent
	}

	found = Deduplicate(found)
	if len(found) == 0 {
		return nil
	}
	return &types.DiscoveredResult{Target: class, Descriptors: found}
}

// InMethods collects the instances of descriptorType on every method of
// class. It never ascends beyond what MethodsOf exposes. Methods without
// instances are skipped.
func InMethods(in Introspector, descriptorType, class string) *types.DiscoveredResult {
	methods, err := in.MethodsOf(class)
	if err != nil {
		return nil
	}

	var items []types.DiscoveredMethod
	for _, method := range methods {
		found, err := in.DescriptorsOn(types.Target{Class: class, Method: method}, descriptorType)
		if err != nil {
			return nil
		}
		found = Deduplicate(found)
		if len(found) == 0 {
			continue
		}
		items = append(items, types.DiscoveredMethod{Method: method, Descriptors: found})
	}

	if len(items) == 0 {
		return nil
	}
	return &types.DiscoveredResult{Target: class, Methods: items}
}
