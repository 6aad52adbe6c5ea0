package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session core
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrRejected           = errors.New("request rejected")

	// Transport errors
	ErrNetwork = errors.New("network error")

	// Persistence errors
	ErrStorage  = errors.New("token storage error")
	ErrNotFound = errors.New("not found")

	// Session lifecycle errors
	ErrSuperseded       = errors.New("validation superseded by a newer run")
	ErrClosed           = errors.New("session manager closed")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotAuthenticated = errors.New("session not authenticated")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
