package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrAPI is returned when the server answered with a non-2xx status.
	ErrAPI = errors.New("api error")

	// ErrNetwork is returned when the server could not be reached at all.
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx response from the TVET-MIS backend. The server
// was reached and answered; the request itself was rejected.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Message is the server's error message, if it sent one.
	Message string
	// RequestID correlates the failure with the server's logs.
	RequestID string
}

// Error returns a human-readable description of the rejection.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Is reports whether this error matches ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// NetworkError is a transport-level failure: DNS, connection refused,
// TLS handshake, or timeout. The server never produced a response.
type NetworkError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description of the failure.
func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error: %v", e.Cause)
	}
	return "network error"
}

// Unwrap returns the underlying error cause.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
