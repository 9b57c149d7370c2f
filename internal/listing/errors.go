package listing

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no live listing matches the requested ID.
var ErrNotFound = errors.New("listing not found")

// ErrUnavailable is returned when a store backend cannot be reached or
// rejects an operation. Callers surface it to the user without retrying.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable wraps a backend error so that errors.Is(err, ErrUnavailable)
// holds while keeping the underlying cause in the message.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// ValidationError reports a missing or malformed submission field.
// It is recoverable: the caller re-prompts the user and nothing is stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
