package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeSourceUnavailable indicates a CSV source could not be fetched
	ErrorTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"

	// ErrorTypeParse indicates a source line could not be tokenized
	ErrorTypeParse ErrorType = "PARSE_FAILURE"

	// ErrorTypeRegeneration indicates the pipeline produced no usable entity set
	ErrorTypeRegeneration ErrorType = "REGENERATION_FAILED"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Fields  map[string]string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err (or anything it wraps) is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewFieldValidationError creates a validation error carrying per-field messages
func NewFieldValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewSourceUnavailableError wraps a fetch or transport failure for a source
func NewSourceUnavailableError(source string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSourceUnavailable,
		Message: fmt.Sprintf("source %s unavailable", source),
		Err:     err,
	}
}

// NewParseError reports a malformed line
func NewParseError(line int, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: fmt.Sprintf("line %d", line),
		Err:     err,
	}
}

// NewRegenerationError aborts a regeneration cycle
func NewRegenerationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRegeneration,
		Message: message,
		Err:     err,
	}
}
