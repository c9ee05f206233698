package types

// DiscoveredMethod groups the descriptors found on one method
type DiscoveredMethod struct {
	Method      string       `json:"method"`
	Descriptors []Descriptor `json:"descriptors"`
}

// DiscoveredResult is the outcome of single-target discovery.
// Class-level discovery fills Descriptors; method-level discovery fills
// Methods. A nil *DiscoveredResult means nothing was found.
type DiscoveredResult struct {
	Target      string             `json:"target"`
	Descriptors []Descriptor       `json:"descriptors,omitempty"`
	Methods     []DiscoveredMethod `json:"methods,omitempty"`
}

// Empty returns true if the result carries neither descriptors nor methods
func (r *DiscoveredResult) Empty() bool {
	return r == nil || (len(r.Descriptors) == 0 && len(r.Methods) == 0)
}

// Method returns the descriptors found on the named method
func (r *DiscoveredResult) Method(name string) ([]Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	for _, m := range r.Methods {
		if m.Method == name {
			return m.Descriptors, true
		}
	}
	return nil, false
}

// DiscoveredTarget aggregates class- and method-level descriptors of one class
// found during a directory scan
type DiscoveredTarget struct {
	Target    string             `json:"target"`
	OnClass   []Descriptor       `json:"on_class,omitempty"`
	OnMethods []DiscoveredMethod `json:"on_methods,omitempty"`
}

// WhereTarget filters targets down to the given class
func WhereTarget(targets []DiscoveredTarget, class string) []DiscoveredTarget {
	var out []DiscoveredTarget
	for _, t := range targets {
		if t.Target == class {
			out = append(out, t)
		}
	}
	return out
}
