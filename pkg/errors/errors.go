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

	// ErrorTypeValidation indicates a malformed or missing input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypePrecondition indicates a business rule rejected the request
	ErrorTypePrecondition ErrorType = "PRECONDITION"

	// ErrorTypeConflict indicates a concurrent modification was detected
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeDataAccess indicates the underlying store failed
	ErrorTypeDataAccess ErrorType = "DATA_ACCESS"

	// ErrorTypeInvariant indicates persisted state that must never exist
	ErrorTypeInvariant ErrorType = "INVARIANT_VIOLATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error.
// Reason is a stable machine-readable code within Type, Details carries the
// structured data a caller needs to explain the rejection to a human.
type AppError struct {
	Type    ErrorType
	Reason  string
	Message string
	Details map[string]interface{}
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := string(e.Type)
	if e.Reason != "" {
		prefix = fmt.Sprintf("%s(%s)", e.Type, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a structured detail and returns the same error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Reason:  reason,
		Message: message,
	}
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypePrecondition,
		Reason:  reason,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewDataAccessError wraps a store failure with the name of the operation
func NewDataAccessError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDataAccess,
		Message: operation + " failed",
		Err:     err,
	}
}

// NewInvariantError creates a new invariant violation error
func NewInvariantError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvariant,
		Message: message,
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

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// HasReason reports whether err is an AppError carrying the given reason
func HasReason(err error, reason string) bool {
	appErr, ok := As(err)
	return ok && appErr.Reason == reason
}
