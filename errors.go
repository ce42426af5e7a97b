package lattice

import (
	"errors"
	"fmt"
)

// Error codes reported by the lattice model service or synthesized by
// the client.
const (
	ErrCodeNotConfigured  = "not_configured"
	ErrCodeNotFound       = "not_found"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeBackendError   = "backend_error"
	ErrCodeTimeout        = "timeout"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrNotConfigured reports that the endpoint required by the
	// operation has no URL configured. No request was issued.
	ErrNotConfigured = errors.New("lattice: endpoint not configured")

	ErrNotFound = errors.New("lattice: resource not found")
	ErrBackend  = errors.New("lattice: backend error")
	ErrTimeout  = errors.New("lattice: timeout")
)

// Error represents a structured lattice service error.
// It supports errors.Is and errors.As for idiomatic Go error handling.
type Error struct {
	// Code is the machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// ConfigKey names the missing configuration key for
	// not_configured errors.
	ConfigKey string `json:"config_key,omitempty"`

	// HTTPStatus is the HTTP status code from the response, or zero
	// when no request was issued.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ConfigKey != "" {
		return fmt.Sprintf("lattice: %s: %s (key=%s)", e.Code, e.Message, e.ConfigKey)
	}
	return fmt.Sprintf("lattice: %s: %s", e.Code, e.Message)
}

// Is enables errors.Is matching against sentinel errors.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeNotConfigured:
		return target == ErrNotConfigured
	case ErrCodeNotFound:
		return target == ErrNotFound
	case ErrCodeBackendError:
		return target == ErrBackend
	case ErrCodeTimeout:
		return target == ErrTimeout
	}
	return false
}

// Unwrap returns the sentinel error corresponding to the error code.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeNotConfigured:
		return ErrNotConfigured
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeBackendError:
		return ErrBackend
	case ErrCodeTimeout:
		return ErrTimeout
	}
	return nil
}

// ErrorCode extracts the lattice error code from an error, if available.
func ErrorCode(err error) string {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Code
	}
	return ""
}

// notConfigured builds the tagged outcome for a missing endpoint URL.
func notConfigured(key string) *Error {
	return &Error{
		Code:      ErrCodeNotConfigured,
		Message:   "missing configuration",
		ConfigKey: key,
	}
}
