// Package apperr defines the error taxonomy shared by every linkvault surface.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrMalformedImport   = errors.New("malformed import")
	ErrStorage           = errors.New("storage failure")
)

// Validation returns an ErrValidation carrying a short user-facing reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// NotFound reports that the named kind of object (section, link) no longer resolves.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// MalformedImport wraps the reason an import payload was rejected.
func MalformedImport(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedImport, reason)
}

// Storage wraps a failed durable write or read.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Message returns the short user-visible text for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredential):
		return "wrong password"
	case errors.Is(err, ErrStorage):
		return "changes could not be saved"
	default:
		return err.Error()
	}
}
