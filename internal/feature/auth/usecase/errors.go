// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned on login when the email or password is wrong.
	// It is deliberately generic so callers cannot tell which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError aggregates every violated field reported by a single
// operation, not just the first one encountered.
type ValidationError struct {
	// Violations holds one human-readable message per violated field.
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Violations, "; ")
}
