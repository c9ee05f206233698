package types

import (
	"errors"
	"fmt"
)

// Domain errors for descriptor discovery
var (
	// Configuration errors
	ErrNoTargetClass = errors.New("no target class configured")

	// Descriptor type resolution errors
	ErrUnknownDescriptorType = errors.New("unknown descriptor type")
	ErrNotADescriptorType    = errors.New("type is not a descriptor type")

	// Introspection errors
	ErrUnknownClass     = errors.New("unknown class")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrInvalidDirective = errors.New("invalid descriptor directive")
)

// NoTargetClassError is returned when a single-target operation runs on a
// configuration without a target class
type NoTargetClassError struct {
	Operation string
}

func (e *NoTargetClassError) Error() string {
	return fmt.Sprintf("no target class found: call On() before calling %s()", e.Operation)
}

// Unwrap makes errors.Is(err, ErrNoTargetClass) hold
func (e *NoTargetClassError) Unwrap() error {
	return ErrNoTargetClass
}
