package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrSessionExpired = errors.New("session expired or invalid")

	// Failure categories for backend calls. Callers branch on these with
	// errors.Is instead of matching message strings.
	ErrDecode     = errors.New("malformed token")
	ErrNetwork    = errors.New("no response from backend")
	ErrServer     = errors.New("backend server error")
	ErrAuth       = errors.New("authentication rejected")
	ErrRateLimit  = errors.New("too many requests")
	ErrValidation = errors.New("validation failed")
)

// FromStatus maps an HTTP status code from the backend to a failure category.
// 2xx maps to nil; anything unrecognised is treated as a server error.
func FromStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrAuth
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrServer, status)
	}
}

// Retryable reports whether a refresh/write failure is transient. Network,
// server and rate-limit failures are retried with a fixed delay; auth and
// decode failures are terminal.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer) || errors.Is(err, ErrRateLimit)
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
