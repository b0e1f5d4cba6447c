// Package services implements the order workflow, upload, auth and admin use
// cases on top of the stores, the storage provider and the email provider.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing records and records the caller is not
	// allowed to see, so lookups never leak existence.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many attempts, please try again later")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError marks malformed input rejected before any persisted state
// was touched.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
