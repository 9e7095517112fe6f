package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a catalog record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when a non-admin invokes an admin action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Code is used by handler summary logs.
func (e *ValidationError) Code() string {
	return "VALIDATION"
}

// Invalid builds a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
