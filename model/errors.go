package model

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a value that does not conform to an entity's
// declared shape.
type ValidationError struct {
	// Path is the JSON path of the failing field; empty for the root value.
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error at %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Checker is implemented by entities with invariants spanning several
// fields. Check runs after all field-level rules have passed.
type Checker interface {
	Check() error
}

func newValidationError(path, reason string, err error) *ValidationError {
	return &ValidationError{Path: path, Reason: reason, Err: err}
}
