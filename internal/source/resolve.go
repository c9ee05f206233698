package source

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/dshills/goattr/internal/parser"
	"github.com/dshills/goattr/pkg/types"
)

// resolve turns a reference written in file into a type id. Unqualified
// names live in the file's package; qualifiers go through the file's
// imports first and then through any indexed package of that name.
// Callers hold mu.
func (idx *Index) resolve(file *fileEntry, ref types.TypeRef) string {
	if ref.Qualifier == "" {
		return file.importPath + "." + ref.Name
	}

	for _, imp := range file.result.Imports {
		if imp.Alias == ref.Qualifier {
			return imp.Path + "." + ref.Name
		}
	}
	for _, imp := range file.result.Imports {
		if imp.Alias != "" {
			continue
		}
		if path.Base(imp.Path) == ref.Qualifier || idx.packageName(imp.Path) == ref.Qualifier {
			return imp.Path + "." + ref.Name
		}
	}
	if paths := idx.byName[ref.Qualifier]; len(paths) > 0 {
		return paths[0] + "." + ref.Name
	}
	return ref.String()
}

// packageName returns the package clause of an indexed import path
func (idx *Index) packageName(importPath string) string {
	for name, paths := range idx.byName {
		for _, p := range paths {
			if p == importPath {
				return name
			}
		}
	}
	return ""
}

// collect builds descriptors from the directives resolving to descriptorType
func (idx *Index) collect(file *fileEntry, directives []types.Directive, descriptorType string) []types.Descriptor {
	var out []types.Descriptor
	for _, d := range directives {
		if parser.IsMeta(d) {
			continue
		}
		if idx.resolve(file, d.Ref) != descriptorType {
			continue
		}
		out = append(out, types.NewDescriptor(descriptorType, idx.fields(d, descriptorType)))
	}
	return out
}

// fields maps positional arguments onto the descriptor type's struct fields
// in declaration order; surplus or unknown positions are keyed by index
func (idx *Index) fields(d types.Directive, descriptorType string) map[string]any {
	if len(d.Positional) == 0 {
		return d.Named
	}

	var names []string
	if t, ok := idx.types[descriptorType]; ok {
		names = t.decl.Fields
	}

	out := make(map[string]any, len(d.Positional))
	for i, value := range d.Positional {
		if i < len(names) {
			out[names[i]] = value
			continue
		}
		out[strconv.Itoa(i)] = value
	}
	return out
}

// metaFromDirective reads Targets and Repeatable from the meta-marker,
// either by name or in that positional order
func metaFromDirective(d types.Directive) (types.DescriptorMeta, error) {
	var targets, repeatable any
	if len(d.Positional) > 0 {
		targets = d.Positional[0]
	}
	if len(d.Positional) > 1 {
		repeatable = d.Positional[1]
	}
	if v, ok := d.Named["Targets"]; ok {
		targets = v
	}
	if v, ok := d.Named["Repeatable"]; ok {
		repeatable = v
	}

	var targetList string
	switch v := targets.(type) {
	case nil:
	case string:
		targetList = v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return types.DescriptorMeta{}, fmt.Errorf("%w: Targets entries must be strings", types.ErrInvalidDirective)
			}
			parts = append(parts, s)
		}
		targetList = strings.Join(parts, ",")
	default:
		return types.DescriptorMeta{}, fmt.Errorf("%w: Targets must be a string or a list", types.ErrInvalidDirective)
	}

	rep := false
	switch v := repeatable.(type) {
	case nil:
	case bool:
		rep = v
	default:
		return types.DescriptorMeta{}, fmt.Errorf("%w: Repeatable must be a bool", types.ErrInvalidDirective)
	}

	return types.ParseTargets(targetList, rep)
}
