package cache

import (
	"errors"
	"fmt"
)

// Common errors returned by the cache.
var (
	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("cache closed")

	// ErrNoBackend is returned by Load when no persistence backend is configured.
	ErrNoBackend = errors.New("no persistence backend configured")
)

// ValidationError reports an invalid configuration value or operation argument.
// It is raised synchronously, before any state mutation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newValidationError builds a ValidationError for the given field.
func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
