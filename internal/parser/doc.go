// Package parser extracts type declarations, methods, and descriptor
// directives from Go source files using AST parsing.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.ParseFile("/path/to/file.go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, decl := range result.Types {
//	    fmt.Printf("%s has %d directives\n", decl.Name, len(decl.Directives))
//	}
//
// # Directives
//
// A directive is a doc-comment line starting with "//@" followed by a Go
// expression: a type name, optionally package-qualified, optionally followed
// by a composite literal body.
//
//	//@Descriptor{Targets: "method", Repeatable: true}
//	type Route struct {
//	    Path    string
//	    Methods []string
//	}
//
//	//@Route{"/users"}
//	//@Route{Path: "/users", Methods: {"POST"}}
//	func (h *UserHandler) Create() {}
//
// Field values are constants: strings, runes, integers, floats, booleans,
// nil, and nested literals with elided types. Nested literals with keys
// become maps, without keys they become lists. Only top-level declarations
// and methods are inspected; local types never carry directives.
//
// # Error Handling
//
// The parser handles syntax errors gracefully:
//
//	result, err := p.ParseFile("broken.go")
//	// err is nil even for syntax errors
//
//	if result.HasErrors() {
//	    for _, parseErr := range result.Errors {
//	        fmt.Printf("Parse error: %v\n", parseErr)
//	    }
//	}
//
// Malformed directives are recorded the same way and skipped, so one bad
// line never hides the other descriptors of a declaration.
package parser
