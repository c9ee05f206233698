package loader

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
)

// ExprTransform compiles an expr-lang expression into a Transform. The
// expression sees the extracted data as "value", in its JSON shape:
//
//	value.fields.Path                          // SingleValue
//	map(value, .fields.Path)                   // RepeatableCollection
//	keys(value)                                // PerMethodMapping
func ExprTransform(expression string) (Transform, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}

	program, err := expr.Compile(expression,
		expr.Env(map[string]any{"value": nil}),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}

	return func(value any) (any, error) {
		plain, err := plainData(value)
		if err != nil {
			return nil, err
		}
		out, err := expr.Run(program, map[string]any{"value": plain})
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", expression, err)
		}
		return out, nil
	}, nil
}

// plainData converts descriptors into maps, lists, and scalars
func plainData(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode transform input: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode transform input: %w", err)
	}
	return out, nil
}
