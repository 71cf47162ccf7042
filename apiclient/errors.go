package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/s0up4200/restkit/model"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid client configuration")
	// ErrClientClosed is matched by every *ClosedClientError
	ErrClientClosed = errors.New("client is closed")
	// ErrValidation is matched by every response decode failure
	ErrValidation = model.ErrValidation
)

// ValidationError is returned when a response body does not match the
// target entity. It is never retried.
type ValidationError = model.ValidationError

// HTTPStatusError reports a completed call whose status indicates failure.
// When returned to the caller it describes the last attempt.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Attempts   int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d %s after %d attempt(s)",
		e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Attempts)
}

// IsNotFound checks if the error indicates a not found response
func (e *HTTPStatusError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *HTTPStatusError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// TransportError reports a call that could not be completed: connection
// failures, timeouts, malformed requests or cancelled contexts.
type TransportError struct {
	Method  string
	URL     string
	Attempt int
	Err     error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error on attempt %d: %v", e.Method, e.URL, e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClosedClientError is returned by every request issued after Close.
type ClosedClientError struct {
	BaseURL string
}

// Error implements the error interface
func (e *ClosedClientError) Error() string {
	return fmt.Sprintf("client for %s is closed", e.BaseURL)
}

// Is reports whether target is ErrClientClosed
func (e *ClosedClientError) Is(target error) bool {
	return target == ErrClientClosed
}

// IsStatus reports whether err carries an HTTP error with the given status
func IsStatus(err error, statusCode int) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == statusCode
}

// IsSuccessStatus reports whether statusCode ends a request successfully
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 400
}
