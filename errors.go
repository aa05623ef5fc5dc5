package secretnote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/secretnote/client-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrFraming matches every *FramingError.
	ErrFraming = errors.New("framing error")

	// ErrKey matches every *KeyError.
	ErrKey = errors.New("key error")

	// ErrCryptoOperation matches every *CryptoOperationError.
	ErrCryptoOperation = errors.New("crypto operation failed")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArmor is returned when an armored identity block cannot be
	// parsed.
	ErrInvalidArmor = errors.New("invalid armored block")

	// ErrMissingBaseURL is returned when a relay client is created without
	// a relay URL.
	ErrMissingBaseURL = errors.New("relay base URL is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrNoteRejected is returned when the relay refuses a note.
	ErrNoteRejected = errors.New("note rejected by relay")

	// ErrRateLimited is returned when the relay rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// SecretNoteError is implemented by all SDK errors.
type SecretNoteError interface {
	error
	SecretNoteError() // marker method
}

// FramingError reports a segment that cannot be packed or a buffer that
// cannot be unpacked.
type FramingError struct {
	Stage string
	Err   error
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *FramingError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FramingError) Is(target error) bool {
	return target == ErrFraming
}

// SecretNoteError implements the SecretNoteError interface.
func (e *FramingError) SecretNoteError() {}

// KeyError reports a failure to generate, import or export a key.
type KeyError struct {
	Stage string
	Err   error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key error at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyError) Is(target error) bool {
	return target == ErrKey
}

// SecretNoteError implements the SecretNoteError interface.
func (e *KeyError) SecretNoteError() {}

// CryptoOperationError reports a failed encrypt, decrypt or sign.
type CryptoOperationError struct {
	Stage string
	Err   error
}

func (e *CryptoOperationError) Error() string {
	return fmt.Sprintf("crypto operation failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *CryptoOperationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *CryptoOperationError) Is(target error) bool {
	return target == ErrCryptoOperation
}

// SecretNoteError implements the SecretNoteError interface.
func (e *CryptoOperationError) SecretNoteError() {}

// ValidationError reports a structurally valid buffer whose contents do
// not form a well-formed envelope.
type ValidationError struct {
	Stage  string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s: %s", e.Stage, strings.Join(e.Errors, "; "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SecretNoteError implements the SecretNoteError interface.
func (e *ValidationError) SecretNoteError() {}

// APIError represents an HTTP error from the note relay.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string // if returned by server
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

// SecretNoteError implements the SecretNoteError interface.
func (e *APIError) SecretNoteError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 400:
		return target == ErrNoteRejected
	case 429:
		return target == ErrRateLimited
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

// SecretNoteError implements the SecretNoteError interface.
func (e *NetworkError) SecretNoteError() {}

// wrapError converts internal relay errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
		}
	}

	var netErr *apierrors.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:     netErr.Err,
			URL:     netErr.URL,
			Attempt: netErr.Attempt,
		}
	}

	return err
}

func framingError(stage string, err error) error {
	return &FramingError{Stage: stage, Err: err}
}

func keyError(stage string, err error) error {
	return &KeyError{Stage: stage, Err: err}
}

func cryptoError(stage string, err error) error {
	return &CryptoOperationError{Stage: stage, Err: err}
}

func validationError(stage string, problems ...string) error {
	return &ValidationError{Stage: stage, Errors: problems}
}
