package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("Invalid input")
	ErrMissingField     = errors.New("Missing field")
	ErrInvalidIDFormat  = errors.New("Invalid ID format")
	ErrEmptyField       = errors.New("Field must not be empty")
	ErrFieldTooLong     = errors.New("Field is too long")
	ErrInvalidEmail     = errors.New("Invalid email")
	ErrInvalidRole      = errors.New("Invalid role")
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes long")
	ErrPasswordMismatch = errors.New("Passwords do not match")

	ErrUserNotFound       = errors.New("User not found")
	ErrProjectNotFound    = errors.New("Project not found")
	ErrEmailAlreadyExists = errors.New("Email already exists")

	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrTokenRequired      = errors.New("Token required")
	ErrTokenExpired       = errors.New("Token expired")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrAuthentication     = errors.New("Authentication error")
	ErrForbidden          = errors.New("manager role required")

	ErrInternalServer = errors.New("Internal server error")

	ErrInvalidGzipRequest   = errors.New("Invalid gzip request body")
	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigInvalid        = errors.New("invalid configuration")
	ErrMissingJWTSecret     = errors.New("jwt secret is not configured")
)

// MissingFieldError names the first required field absent from a payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing field: %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// FieldError attaches the offending field name to a validation sentinel.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is and As mirror the standard library so callers can import this package
// under its own name.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
