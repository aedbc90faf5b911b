package copilot

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no assist endpoint is configured. The
// check runs before any network call.
var ErrNotConfigured = errors.New("assist endpoint not configured")

// ErrEmptyMessage is returned when a submission carries no message text.
var ErrEmptyMessage = errors.New("message is empty")

// NetworkError wraps a transport-level failure: the endpoint could not be
// reached at all (DNS, connection refusal, open circuit breaker).
type NetworkError struct {
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("assist endpoint unreachable: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError reports a non-success HTTP status or an undecodable response
// body from the assist endpoint. The UI explains these differently from
// NetworkError, so they stay distinct types.
type ServiceError struct {
	Status int
	Body   string
}

// Error implements error.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("assist endpoint returned status %d: %s", e.Status, e.Body)
}
