package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Descriptor is a single declarative marker instance attached to a class or method
type Descriptor struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields,omitempty"`
}

// NewDescriptor builds a descriptor with canonical, JSON-shaped field values.
// Numbers become json.Number holding their exact text, nested maps
// map[string]any and lists []any, so a descriptor compares equal to itself
// after a cache round trip and large integers keep every digit.
func NewDescriptor(descriptorType string, fields map[string]any) Descriptor {
	d := Descriptor{Type: descriptorType}
	if len(fields) == 0 {
		return d
	}

	canonical, err := canonicalize(fields)
	if err != nil {
		// Values json cannot represent are kept verbatim
		d.Fields = fields
		return d
	}
	d.Fields = canonical
	return d
}

// Empty reports whether the descriptor carries no field values
func (d Descriptor) Empty() bool {
	return len(d.Fields) == 0
}

// BaseName returns the bare type name without package qualification
func (d Descriptor) BaseName() string {
	return BaseName(d.Type)
}

// Canonical returns the stable serialized form of the descriptor fields.
// encoding/json sorts map keys, which makes the output independent of
// insertion order.
func (d Descriptor) Canonical() ([]byte, error) {
	return json.Marshal(d.Fields)
}

// String renders the descriptor the way it is written in source
func (d Descriptor) String() string {
	if d.Empty() {
		return d.BaseName()
	}
	body, err := d.Canonical()
	if err != nil {
		return fmt.Sprintf("%s{%v}", d.BaseName(), d.Fields)
	}
	return d.BaseName() + string(body)
}

// BaseName strips the package qualifier from a type identifier
// ("example.com/app/attrs.Route" -> "Route").
func BaseName(id string) string {
	if i := strings.LastIndexAny(id, "./"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// UnmarshalJSON decodes numeric fields as json.Number, matching NewDescriptor
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   string          `json:"type"`
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Type = raw.Type
	d.Fields = nil
	if len(raw.Fields) == 0 || bytes.Equal(raw.Fields, []byte("null")) {
		return nil
	}
	fields, err := decodeFields(raw.Fields)
	if err != nil {
		return fmt.Errorf("descriptor %s: %w", raw.Type, err)
	}
	d.Fields = fields
	return nil
}

func canonicalize(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return decodeFields(raw)
}

func decodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// DescriptorMeta describes where a descriptor type may be placed and whether
// it may appear more than once on the same position
type DescriptorMeta struct {
	OnClass         bool `json:"on_class"`
	OnMethod        bool `json:"on_method"`
	OnFunction      bool `json:"on_function"`
	OnProperty      bool `json:"on_property"`
	OnParameter     bool `json:"on_parameter"`
	OnConstant      bool `json:"on_constant"`
	OnClassConstant bool `json:"on_class_constant"`
	Repeatable      bool `json:"repeatable"`
}

// Target names accepted in the Targets field of the meta-marker
const (
	TargetClass         = "class"
	TargetMethod        = "method"
	TargetFunction      = "function"
	TargetProperty      = "property"
	TargetParameter     = "parameter"
	TargetConstant      = "constant"
	TargetClassConstant = "class_constant"
	TargetAll           = "all"
)

// ParseTargets builds a DescriptorMeta from a target list such as
// "class,method" or "class|method". An empty list allows every position.
func ParseTargets(targets string, repeatable bool) (DescriptorMeta, error) {
	meta := DescriptorMeta{Repeatable: repeatable}

	parts := strings.FieldsFunc(targets, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})
	if len(parts) == 0 {
		parts = []string{TargetAll}
	}

	for _, part := range parts {
		switch strings.ToLower(part) {
		case TargetClass:
			meta.OnClass = true
		case TargetMethod:
			meta.OnMethod = true
		case TargetFunction:
			meta.OnFunction = true
		case TargetProperty:
			meta.OnProperty = true
		case TargetParameter:
			meta.OnParameter = true
		case TargetConstant:
			meta.OnConstant = true
		case TargetClassConstant:
			meta.OnClassConstant = true
		case TargetAll:
			meta.OnClass, meta.OnMethod, meta.OnFunction = true, true, true
			meta.OnProperty, meta.OnParameter = true, true
			meta.OnConstant, meta.OnClassConstant = true, true
		default:
			return DescriptorMeta{}, fmt.Errorf("%w: unknown target %q", ErrInvalidDirective, part)
		}
	}

	return meta, nil
}

// Target addresses a class, or one of its methods when Method is set
type Target struct {
	Class  string
	Method string
}

// IsMethod returns true if the target addresses a method
func (t Target) IsMethod() bool {
	return t.Method != ""
}

func (t Target) String() string {
	if t.IsMethod() {
		return t.Class + "." + t.Method
	}
	return t.Class
}
