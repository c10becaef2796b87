package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSessionExpired is matched by every SessionExpiredError via errors.Is.
var ErrSessionExpired = errors.New("session expired")

// TimeoutError is returned when a request exceeds the client's per-request deadline.
// It is not retried by the client.
type TimeoutError struct {
	Method  string
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s %s after %s", e.Method, e.Path, e.Timeout)
}

// NetworkError is returned when no response was received (DNS failure, refused connection, reset).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unreachable: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SessionExpiredError is terminal for the current session: the refresh token was
// missing or the refresh call failed. Stored credentials have already been cleared.
type SessionExpiredError struct {
	Reason string
	Err    error
}

func (e *SessionExpiredError) Error() string {
	if e.Reason == "" {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSessionExpired.Error(), e.Reason)
}

func (e *SessionExpiredError) Unwrap() error { return e.Err }

// Is reports ErrSessionExpired as a match so callers need not use errors.As.
func (e *SessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

// APIError is a well-formed HTTP response with a failure status,
// or a 2xx response whose envelope reported success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError uses the server message verbatim when there is one.
func newAPIError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP error %d", status)
	}
	return &APIError{Status: status, Message: message}
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
