package domain

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrWeakPassword            = errors.New("password is not strong enough")
	ErrUserExists              = errors.New("user already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrTooManyAttempts         = errors.New("too many failed login attempts")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrTokenInvalid            = errors.New("token is invalid")
	ErrTokenExpired            = errors.New("token has expired")
	ErrOAuthVerificationFailed = errors.New("identity provider verification failed")
	ErrTaskNotFound            = errors.New("task not found")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
