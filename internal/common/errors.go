package common

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - use errors.Is() to check
var (
	// Generic errors
	ErrInternal     = errors.New("internal error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrBadRequest   = errors.New("bad request")

	// Authentication errors, all classified as ErrUnauthorized
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenRevoked       = fmt.Errorf("token revoked: %w", ErrUnauthorized)

	// Resource-specific errors
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrNewsNotFound    = fmt.Errorf("news %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("username %w", ErrConflict)

	// Validation errors
	ErrValidation = errors.New("validation error")
)

// ValidationError represents a validation error with field details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is implements errors.Is for ValidationError
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects every failed field of a form.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the messages reported for one field, in order.
func (e ValidationErrors) Field(name string) []string {
	var out []string
	for _, err := range e {
		if err.Field == name {
			out = append(out, err.Message)
		}
	}
	return out
}

// WrapInternal wraps an error as an internal error with context
func WrapInternal(operation string, err error) error {
	return fmt.Errorf("%s: %w", operation, errors.Join(ErrInternal, err))
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnauthorized checks if error is an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if error is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsBadRequest checks if error is a malformed request error
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
