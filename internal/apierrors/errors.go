// Package apierrors provides the relay error model shared by the HTTP client
// and the relay server.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrNoteRejected is returned when the relay refuses a note or a
	// fingerprint as malformed.
	ErrNoteRejected = errors.New("note rejected by relay")

	// ErrRateLimited is returned when the relay rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotFound is returned for unknown relay routes.
	ErrNotFound = errors.New("not found")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("relay server error")
)

// Response status values carried in every relay JSON body.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// ErrorResponse is the JSON body the relay sends with a non-2xx status.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// APIError represents an HTTP error from the note relay.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return target == ErrNoteRejected
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrServer
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
