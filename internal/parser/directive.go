package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/dshills/goattr/pkg/types"
)

// DirectivePrefix marks a doc-comment line as a descriptor directive
const DirectivePrefix = "//@"

// MetaDirective is the name of the marker that turns a type into a
// descriptor type
const MetaDirective = "Descriptor"

// ParseDirective parses the text following "//@". A directive is a type
// reference optionally followed by a composite literal body:
//
//	Deprecated
//	Route{"/users"}
//	attrs.Route{Path: "/users", Methods: {"GET", "POST"}, Meta: {"auth": true}}
func ParseDirective(text string) (types.Directive, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Directive{}, fmt.Errorf("%w: empty directive", types.ErrInvalidDirective)
	}

	expr, err := parser.ParseExpr(text)
	if err != nil {
		return types.Directive{}, fmt.Errorf("%w: %q: %v", types.ErrInvalidDirective, text, err)
	}

	switch e := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		ref, ok := typeRef(e)
		if !ok {
			return types.Directive{}, fmt.Errorf("%w: %q: unsupported name", types.ErrInvalidDirective, text)
		}
		return types.Directive{Ref: ref}, nil
	case *ast.CompositeLit:
		return compositeDirective(text, e)
	default:
		return types.Directive{}, fmt.Errorf("%w: %q: expected Name or Name{...}", types.ErrInvalidDirective, text)
	}
}

func compositeDirective(text string, lit *ast.CompositeLit) (types.Directive, error) {
	ref, ok := typeRef(lit.Type)
	if !ok || lit.Type == nil {
		return types.Directive{}, fmt.Errorf("%w: %q: missing descriptor name", types.ErrInvalidDirective, text)
	}

	directive := types.Directive{Ref: ref}
	for _, elt := range lit.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return types.Directive{}, fmt.Errorf("%w: %q: field names must be identifiers", types.ErrInvalidDirective, text)
			}
			value, err := literalValue(kv.Value)
			if err != nil {
				return types.Directive{}, fmt.Errorf("%w: %q: field %s: %v", types.ErrInvalidDirective, text, key.Name, err)
			}
			if directive.Named == nil {
				directive.Named = make(map[string]any)
			}
			directive.Named[key.Name] = value
			continue
		}

		value, err := literalValue(elt)
		if err != nil {
			return types.Directive{}, fmt.Errorf("%w: %q: %v", types.ErrInvalidDirective, text, err)
		}
		directive.Positional = append(directive.Positional, value)
	}

	if len(directive.Named) > 0 && len(directive.Positional) > 0 {
		return types.Directive{}, fmt.Errorf("%w: %q: mixture of field:value and value elements", types.ErrInvalidDirective, text)
	}

	return directive, nil
}

// literalValue converts a constant expression into plain Go data
func literalValue(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return basicValue(e)
	case *ast.Ident:
		switch e.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "nil":
			return nil, nil
		}
		return nil, fmt.Errorf("unsupported identifier %s", e.Name)
	case *ast.ParenExpr:
		return literalValue(e.X)
	case *ast.UnaryExpr:
		return unaryValue(e)
	case *ast.CompositeLit:
		if e.Type != nil {
			return nil, fmt.Errorf("nested literals must elide their type")
		}
		return compositeValue(e)
	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

func basicValue(lit *ast.BasicLit) (any, error) {
	switch lit.Kind {
	case token.INT:
		return strconv.ParseInt(lit.Value, 0, 64)
	case token.FLOAT:
		return strconv.ParseFloat(lit.Value, 64)
	case token.STRING, token.CHAR:
		return strconv.Unquote(lit.Value)
	default:
		return nil, fmt.Errorf("unsupported literal %s", lit.Value)
	}
}

func unaryValue(e *ast.UnaryExpr) (any, error) {
	value, err := literalValue(e.X)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.ADD:
		switch value.(type) {
		case int64, float64:
			return value, nil
		}
	case token.SUB:
		switch v := value.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
	case token.NOT:
		if v, ok := value.(bool); ok {
			return !v, nil
		}
	}

	return nil, fmt.Errorf("unsupported operator %s", e.Op)
}

// compositeValue turns {k: v, ...} into a map and {v, ...} into a list
func compositeValue(lit *ast.CompositeLit) (any, error) {
	if len(lit.Elts) == 0 {
		return []any{}, nil
	}

	if _, keyed := lit.Elts[0].(*ast.KeyValueExpr); !keyed {
		list := make([]any, 0, len(lit.Elts))
		for _, elt := range lit.Elts {
			if _, ok := elt.(*ast.KeyValueExpr); ok {
				return nil, fmt.Errorf("mixture of keyed and unkeyed elements")
			}
			value, err := literalValue(elt)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	}

	m := make(map[string]any, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("mixture of keyed and unkeyed elements")
		}
		key, err := mapKey(kv.Key)
		if err != nil {
			return nil, err
		}
		value, err := literalValue(kv.Value)
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
	return m, nil
}

// mapKey accepts identifiers, strings, and numbers as keys
func mapKey(expr ast.Expr) (string, error) {
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, nil
	}

	value, err := literalValue(expr)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("unsupported key %v", value)
}

// IsMeta reports whether the directive is the descriptor-type meta-marker
func IsMeta(d types.Directive) bool {
	return d.Ref.Name == MetaDirective && (d.Ref.Qualifier == "" || d.Ref.Qualifier == "goattr")
}
