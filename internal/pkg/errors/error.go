// internal/pkg/errors/error.go
package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
	ErrBadRequest   = errors.New("bad request")

	// Pipeline-specific errors. Conflict and NoChange are returned by the
	// stage transition engine; both are recoverable by re-reading the lead.
	ErrConflict       = errors.New("conflict: lead was modified concurrently")
	ErrNoChange       = errors.New("no change: lead is already in the target stage")
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
