// Package apperrors holds the error taxonomy shared by every layer.
// Repositories and clients wrap these with fmt.Errorf("...: %w", err); the HTTP
// layer maps them to status codes with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the credential is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned when a token fails signature, expiry or format checks.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)

	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest covers bad amounts, bad parameters and missing linkage.
	ErrInvalidRequest = errors.New("invalid request")

	ErrInsufficientFunds = fmt.Errorf("%w: insufficient balance", ErrInvalidRequest)

	// ErrConflict is a uniqueness violation (username, email, customer OID).
	ErrConflict = errors.New("conflict")

	// ErrBankUnavailable means the external bank could not be reached in time.
	ErrBankUnavailable = errors.New("bank unavailable")

	// ErrBank means the external bank answered with an error.
	ErrBank = errors.New("bank error")

	// ErrAgent covers every agent failure: timeout, unreachable, bad status.
	ErrAgent = errors.New("agent error")
)

// Error pairs a sentinel kind with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

// New returns an error that matches kind under errors.Is and carries message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// PublicMessage returns the client-facing message carried by err, if any.
func PublicMessage(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
