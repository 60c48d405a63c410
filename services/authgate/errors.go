package authgate

import (
	"errors"
	"strings"
)

// Backend error conditions the gate knows how to explain.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAlreadyRegistered  = errors.New("user already registered")
	// ErrSubmitting rejects a form submitted while another is in flight.
	ErrSubmitting = errors.New("a request is already in progress")
)

const (
	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgAlreadyRegistered  = "This email is already registered. Please login instead."
)

// DescribeSignInError turns a backend sign-in failure into user-facing text.
// Unrecognised errors pass through unchanged.
func DescribeSignInError(err error) string {
	if errors.Is(err, ErrInvalidCredentials) || strings.EqualFold(err.Error(), ErrInvalidCredentials.Error()) {
		return msgInvalidCredentials
	}
	return err.Error()
}

// DescribeSignUpError turns a backend sign-up failure into user-facing text.
func DescribeSignUpError(err error) string {
	if errors.Is(err, ErrAlreadyRegistered) || strings.Contains(strings.ToLower(err.Error()), "already registered") {
		return msgAlreadyRegistered
	}
	return err.Error()
}
