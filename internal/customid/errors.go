package customid

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTemplate          = errors.New("invalid template")
	ErrSequenceAllocationFailed = errors.New("sequence allocation failed")
	ErrUniquenessExhausted      = errors.New("uniqueness attempts exhausted")

	// ErrSequenceExhausted is returned by allocators whose counter reached
	// its configured maximum.
	ErrSequenceExhausted = errors.New("sequence exhausted")
)

// TemplateError describes why a template was rejected. Position is the index
// of the offending element in the template as given, or -1 when the problem
// is not tied to one element.
type TemplateError struct {
	Position int
	Reason   string
}

func (e *TemplateError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidTemplate, e.Reason)
	}
	return fmt.Sprintf("%s: element %d: %s", ErrInvalidTemplate, e.Position, e.Reason)
}

func (e *TemplateError) Unwrap() error {
	return ErrInvalidTemplate
}

func invalid(position int, format string, args ...any) error {
	return &TemplateError{Position: position, Reason: fmt.Sprintf(format, args...)}
}
