package types

import (
	"errors"
	"go/token"
	"strings"
)

// DeclKind represents the underlying kind of a named type declaration
type DeclKind string

const (
	KindStruct    DeclKind = "struct"
	KindInterface DeclKind = "interface"
	KindType      DeclKind = "type"
)

// Position represents a location in source code
type Position struct {
	Line   int
	Column int
}

// TypeRef is a possibly package-qualified reference to a named type
// as written in source ("Base", "models.Base")
type TypeRef struct {
	Qualifier string
	Name      string
}

// String renders the reference as written in source
func (r TypeRef) String() string {
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

// ParseTypeRef splits "pkg.Name" into its qualifier and name
func ParseTypeRef(s string) TypeRef {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return TypeRef{Qualifier: s[:i], Name: s[i+1:]}
	}
	return TypeRef{Name: s}
}

// Directive is a descriptor written as a "//@Name{...}" doc-comment line.
// Unkeyed elements land in Positional, keyed ones in Named.
type Directive struct {
	Ref        TypeRef
	Positional []any
	Named      map[string]any
	Line       int
}

// TypeDecl is a named type declaration extracted from source
type TypeDecl struct {
	Name       string
	Kind       DeclKind
	File       string
	DocComment string
	Directives []Directive
	Embeds     []TypeRef // Embedded fields in declaration order
	Fields     []string  // Named fields in declaration order
	Start      Position
}

// MethodDecl is a method declaration extracted from source
type MethodDecl struct {
	Name       string
	Receiver   string // Receiver type name without pointer
	File       string
	DocComment string
	Directives []Directive
	Start      Position
}

// IsExported returns true if the declared type is visible outside its package
func (d *TypeDecl) IsExported() bool {
	return token.IsExported(d.Name)
}

// Validate performs basic validation of the declaration
func (d *TypeDecl) Validate() error {
	if d.Name == "" {
		return errors.New("type name is required")
	}

	switch d.Kind {
	case KindStruct, KindInterface, KindType:
	default:
		return errors.New("invalid declaration kind")
	}

	if d.Start.Line <= 0 {
		return errors.New("invalid position: line numbers must be positive")
	}

	return nil
}

// Validate performs basic validation of the method declaration
func (m *MethodDecl) Validate() error {
	if m.Name == "" {
		return errors.New("method name is required")
	}
	if m.Receiver == "" {
		return errors.New("methods must have a receiver type")
	}
	return nil
}
