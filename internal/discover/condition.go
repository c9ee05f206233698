package discover

import "github.com/dshills/goattr/pkg/types"

// Condition is the presence filter applied to candidates of a bulk scan
type Condition struct {
	Introspector   Introspector
	DescriptorType string
	Ascend         bool
}

// Satisfies reports whether class carries the descriptor on itself, on an
// ancestor when ascending, or on any of its methods. It never fails;
// introspection errors count as absence.
func (c Condition) Satisfies(class string) bool {
	return c.onHead(class) || c.onMethods(class)
}

func (c Condition) onHead(class string) bool {
	direct, err := c.Introspector.DescriptorsOn(types.Target{Class: class}, c.DescriptorType)
	if err == nil && len(direct) > 0 {
		return true
	}

	if c.Ascend {
		return OnClass(c.Introspector, c.DescriptorType, class, true, false) != nil
	}
	return false
}

func (c Condition) onMethods(class string) bool {
	methods, err := c.Introspector.MethodsOf(class)
	if err != nil {
		return false
	}

	for _, method := range methods {
		found, err := c.Introspector.DescriptorsOn(types.Target{Class: class, Method: method}, c.DescriptorType)
		if err == nil && len(found) > 0 {
			return true
		}
	}
	return false
}
