package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Components wrap these
// with context via fmt.Errorf and callers classify with errors.Is.
var (
	// ErrNotFound indicates a missing or soft-deleted entity.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates a visibility or privacy violation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a duplicate edge or mark, or a self-reference.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrInternal indicates a persistence or cache failure.
	ErrInternal = errors.New("internal error")
)

// NotFound wraps ErrNotFound with a message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Forbidden wraps ErrForbidden with a message.
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Conflict wraps ErrConflict with a message.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Validation wraps ErrValidation with a message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Internal wraps an underlying store failure so internal detail does not
// leak to external callers while remaining inspectable in logs.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// IsNotFound reports whether err is classified as a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err is classified as a privacy violation.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsConflict reports whether err is classified as a duplicate or self-reference.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
