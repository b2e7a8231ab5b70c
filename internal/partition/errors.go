package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates an object set or region override that cannot be
// partitioned. Construction fails before any node is built.
var ErrInvalidInput = errors.New("partition: invalid input")

// InputError wraps ErrInvalidInput with the offending field.
type InputError struct {
	Field  string
	Index  int // object index, -1 when the error is not tied to one object
	Reason string
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s[%d]: %s", ErrInvalidInput, e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field string, index int, format string, args ...any) error {
	return &InputError{Field: field, Index: index, Reason: fmt.Sprintf(format, args...)}
}
