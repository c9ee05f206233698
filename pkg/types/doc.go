// Package types provides shared type definitions for goattr.
//
// This package defines domain types used across multiple components of goattr,
// including descriptors, discovery results, and parse results.
//
// # Descriptors
//
// A Descriptor is a declarative marker attached to a Go type or method. In
// source it is written as a doc-comment directive:
//
//	//@Route{Path: "/users", Methods: {"GET"}}
//	func (h *UserHandler) List() {}
//
// Field values are canonicalised into JSON-shaped data by NewDescriptor, so
// two descriptors with the same values compare equal after a cache round trip:
//
//	d := types.NewDescriptor("example.com/app/attrs.Route", map[string]any{
//	    "Path": "/users",
//	})
//
// # Descriptor Types
//
// A descriptor type is itself a Go type carrying the meta-marker:
//
//	//@Descriptor{Targets: "method", Repeatable: true}
//	type Route struct {
//	    Path string
//	}
//
// DescriptorMeta records which positions the type may decorate and whether
// it may appear more than once on the same position.
//
// # Results
//
// Class-level discovery returns a DiscoveredResult with Descriptors filled;
// method-level discovery fills Methods instead. Empty discovery is reported as
// a nil result, never as an empty container:
//
//	if result == nil {
//	    // nothing found
//	}
//
// Directory scans aggregate both sides into DiscoveredTarget values.
package types
