package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation and load failures.
var (
	ErrInvalidQuery     = errors.New("invalid query")
	ErrQueryTooLong     = errors.New("query too long")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrMissingColumn    = errors.New("missing column")
	ErrDatasetEmpty     = errors.New("dataset has no rows")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
