// Package domain provides the canonical travel-inventory model and the
// error taxonomy shared by every provider adapter.
package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a provider failure.
type ErrorCode string

const (
	// ErrorCodeValidation indicates the caller's search params were malformed.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrorCodeAuthentication indicates the vendor rejected our credentials.
	ErrorCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"

	// ErrorCodeRateLimit indicates the vendor throttled the request.
	ErrorCodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// ErrorCodeHTTP indicates a generic vendor HTTP failure.
	ErrorCodeHTTP ErrorCode = "HTTP_ERROR"

	// ErrorCodeInvalidResponse indicates the vendor returned an unexpected payload shape.
	ErrorCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"

	// ErrorCodeUnknown is the catch-all for non-HTTP failures.
	ErrorCodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

// ProviderError is the canonical error produced by every adapter. It never
// escapes the provider layer as a raw error; Search wraps it into the
// response envelope.
type ProviderError struct {
	// Code is the taxonomy classification.
	Code ErrorCode `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// StatusCode is the vendor HTTP status, when one was observed.
	StatusCode int `json:"statusCode,omitempty"`

	// Retryable reports whether a retry against the same vendor may succeed.
	Retryable bool `json:"retryable"`

	// RetryAfterSeconds is the vendor-suggested backoff for rate limit errors.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`

	// Field names the offending parameter for validation errors.
	Field string `json:"field,omitempty"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithStatusCode sets the observed HTTP status.
func (e *ProviderError) WithStatusCode(status int) *ProviderError {
	e.StatusCode = status
	return e
}

// WithField names the parameter that failed validation.
func (e *ProviderError) WithField(field string) *ProviderError {
	e.Field = field
	return e
}

// NewProviderError creates a generic provider error.
func NewProviderError(code ErrorCode, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ErrValidation creates a validation error for a missing or malformed field.
func ErrValidation(field, message string) *ProviderError {
	return &ProviderError{
		Code:       ErrorCodeValidation,
		Message:    message,
		StatusCode: 400,
		Field:      field,
	}
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string) *ProviderError {
	return &ProviderError{
		Code:       ErrorCodeAuthentication,
		Message:    message,
		StatusCode: 401,
	}
}

// ErrRateLimit creates a rate limit error carrying the vendor-suggested delay.
func ErrRateLimit(message string, retryAfterSeconds int) *ProviderError {
	return &ProviderError{
		Code:              ErrorCodeRateLimit,
		Message:           message,
		StatusCode:        429,
		Retryable:         true,
		RetryAfterSeconds: retryAfterSeconds,
	}
}

// ErrHTTP creates a generic HTTP error. Server-side failures are retryable.
func ErrHTTP(status int, message string) *ProviderError {
	return &ProviderError{
		Code:       ErrorCodeHTTP,
		Message:    message,
		StatusCode: status,
		Retryable:  status >= 500,
	}
}

// ErrInvalidResponse creates an error for an unparseable vendor payload.
func ErrInvalidResponse(message string) *ProviderError {
	return &ProviderError{Code: ErrorCodeInvalidResponse, Message: message}
}

// ErrUnknown creates the catch-all error for non-HTTP failures.
func ErrUnknown(message string) *ProviderError {
	return &ProviderError{Code: ErrorCodeUnknown, Message: message}
}

// Normalize converts an arbitrary error into a ProviderError. Errors already
// in the taxonomy pass through unchanged.
func Normalize(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return ErrUnknown(err.Error())
}
