package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed input or a policy violation.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated indicates a missing or unusable credential.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates a credential that was presented but rejected.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate unique key.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStore wraps persistence failures. Its cause is never shown to clients.
	ErrStore = errors.New("store failure")
)

// PublicError pairs an error kind with a message that is safe to return to clients.
type PublicError struct {
	Kind    error
	Message string
}

// Error implements error.
func (e *PublicError) Error() string {
	return e.Message
}

// Unwrap exposes the kind so errors.Is matches the sentinel.
func (e *PublicError) Unwrap() error {
	return e.Kind
}

// NewPublicError builds a PublicError for the given kind.
func NewPublicError(kind error, message string) *PublicError {
	return &PublicError{Kind: kind, Message: message}
}

// StoreError wraps a persistence failure under ErrStore, keeping the cause for logs.
func StoreError(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, cause)
}

// UserSafeMessage returns the client-facing text for err.
func UserSafeMessage(err error) string {
	var pub *PublicError
	if errors.As(err, &pub) {
		return pub.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, ErrForbidden):
		return "Invalid or expired token"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrConflict):
		return "Resource already exists"
	case errors.Is(err, ErrValidation):
		return "Invalid request"
	default:
		return "Internal server error"
	}
}
