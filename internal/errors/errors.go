// Package errors provides structured error types for the Taiga bridge.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrKeyNotConfigured = errors.New("proxy API key is not configured")
)

// ValidationError reports malformed or missing caller input. It is
// produced before any remote call is made and always maps to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation creates a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// APIError represents an error response from an external API call.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Payload    any
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates a new API error.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

// AsAPIError unwraps err into an APIError, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ConflictError reports an optimistic-concurrency mismatch on an update.
// LatestVersion carries the version observed by a follow-up read so the
// caller can retry with fresh data; the bridge never retries on its own.
type ConflictError struct {
	Entity        string
	ID            int
	LatestVersion any
	Err           error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict updating %s %d: latest version is %v", e.Entity, e.ID, e.LatestVersion)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// NotFoundError reports a failed lookup, such as a status name that does
// not exist in a project's status enumeration.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFound creates a NotFoundError with a formatted message.
func NewNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
