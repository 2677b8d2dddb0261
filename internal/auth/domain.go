package auth

import (
	"context"

	"github.com/pdt-ict/portal/internal/users"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is the result of a successful register or login.
type Session struct {
	User  users.Profile `json:"user"`
	Token string        `json:"token"`
}

// ForgotResult is the outcome of a forgot-password request. ResetToken is only
// populated when debug fields are enabled and the account exists.
type ForgotResult struct {
	ResetToken string
}

// Auth event names recorded by the service.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventRefresh  = "refresh"
	EventForgot   = "forgot_password"
	EventReset    = "reset_password"
)

// Event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// EventRecorder counts authentication events.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// ResetNotifier delivers password-reset tokens to account owners.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string) error
}
