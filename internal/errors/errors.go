package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeMissingField    ErrorType = "missing_field"
	ErrorTypePayloadTooLarge ErrorType = "payload_too_large"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeConfiguration   ErrorType = "configuration"
	ErrorTypeInternal        ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequestError is returned when the request body is absent or not JSON.
func NewInvalidRequestError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewMissingFieldError is returned when a required field is absent or empty.
func NewMissingFieldError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingField,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewPayloadTooLargeError creates a new payload too large error
func NewPayloadTooLargeError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypePayloadTooLarge,
		Message:    message,
		StatusCode: http.StatusRequestEntityTooLarge,
		Cause:      cause,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}
