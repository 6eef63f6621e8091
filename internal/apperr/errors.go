package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — запрошенной записи нет ни в одной коллекции.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the user refused notification
	// access. The feature stays disabled for the rest of the session.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIntegrationUnavailable marks a best-effort integration failure.
	// It is logged and never surfaced to the caller as an error.
	ErrIntegrationUnavailable = errors.New("integration unavailable")
)

// ValidationError rejects bad input before any write. Not retried; the user
// must correct the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a backing-store read/write failure. The attempted
// operation is abandoned, no automatic retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
