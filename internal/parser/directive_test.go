package parser

import (
	"testing"

	"github.com/dshills/goattr/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective_Forms(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		ref        types.TypeRef
		positional []any
		named      map[string]any
	}{
		{
			name: "bare name",
			text: "Deprecated",
			ref:  types.TypeRef{Name: "Deprecated"},
		},
		{
			name: "qualified name",
			text: "attrs.Deprecated",
			ref:  types.TypeRef{Qualifier: "attrs", Name: "Deprecated"},
		},
		{
			name: "empty body",
			text: "Marker{}",
			ref:  types.TypeRef{Name: "Marker"},
		},
		{
			name:       "positional",
			text:       `Route{"/users", 3}`,
			ref:        types.TypeRef{Name: "Route"},
			positional: []any{"/users", int64(3)},
		},
		{
			name: "named with nested values",
			text: `attrs.Route{Path: "/u", Methods: {"GET", "POST"}, Meta: {"auth": true, retries: -2}}`,
			ref:  types.TypeRef{Qualifier: "attrs", Name: "Route"},
			named: map[string]any{
				"Path":    "/u",
				"Methods": []any{"GET", "POST"},
				"Meta":    map[string]any{"auth": true, "retries": int64(-2)},
			},
		},
		{
			name:       "literal kinds",
			text:       "Values{0x10, 1.5, 'c', `raw`, false, nil, -0.25, !true, {}}",
			ref:        types.TypeRef{Name: "Values"},
			positional: []any{int64(16), 1.5, "c", "raw", false, nil, -0.25, false, []any{}},
		},
		{
			name:  "numeric map keys",
			text:  `Codes{Map: {200: "ok", 404: "missing"}}`,
			ref:   types.TypeRef{Name: "Codes"},
			named: map[string]any{"Map": map[string]any{"200": "ok", "404": "missing"}},
		},
		{
			name:       "surrounding whitespace",
			text:       "  Tag{\"x\"}  ",
			ref:        types.TypeRef{Name: "Tag"},
			positional: []any{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDirective(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.ref, d.Ref)
			assert.Equal(t, tt.positional, d.Positional)
			assert.Equal(t, tt.named, d.Named)
		})
	}
}

func TestParseDirective_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "   "},
		{"syntax", "Route{"},
		{"call", `Route("/a")`},
		{"literal only", `"/a"`},
		{"elided name", `{"a"}`},
		{"mixed elements", `Route{"/a", Path: "/b"}`},
		{"string field name", `Route{"Path": "/a"}`},
		{"unknown identifier", `Route{Path: somewhere}`},
		{"typed nested literal", `Route{Methods: []string{"GET"}}`},
		{"mixed nested", `Route{Meta: {"a", b: 1}}`},
		{"binary expression", `Route{Size: 1 + 2}`},
		{"imaginary", `Route{2i}`},
		{"negated string", `Route{-"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDirective(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidDirective)
		})
	}
}

func TestIsMeta(t *testing.T) {
	assert.True(t, IsMeta(types.Directive{Ref: types.TypeRef{Name: "Descriptor"}}))
	assert.True(t, IsMeta(types.Directive{Ref: types.TypeRef{Qualifier: "goattr", Name: "Descriptor"}}))
	assert.False(t, IsMeta(types.Directive{Ref: types.TypeRef{Qualifier: "attrs", Name: "Descriptor"}}))
	assert.False(t, IsMeta(types.Directive{Ref: types.TypeRef{Name: "Route"}}))
}
