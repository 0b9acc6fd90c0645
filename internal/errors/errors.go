// Package errors defines the structured application errors used throughout
// the agent-ops job system.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data. Validation errors are
	// surfaced at the API boundary before a job row exists.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeDeprecatedType indicates a retired job type. The request shape is
	// valid, so this is a job failure rather than a validation error.
	ErrCodeDeprecatedType ErrorCode = "deprecated_type"
	// ErrCodeFileRejected indicates a sandbox file reference was refused
	// (traversal attempt, oversize, or non-text content).
	ErrCodeFileRejected ErrorCode = "file_rejected"
	// ErrCodeCollaborator indicates the LLM collaborator call failed.
	ErrCodeCollaborator ErrorCode = "collaborator"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As through Unwrap.
//
// Messages on AppError are safe to persist on job records and return to
// callers: constructors must never embed secrets or upstream response bodies.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific parameter that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a new Validation error for a specific parameter.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// DeprecatedType creates a new DeprecatedType error.
func DeprecatedType(message string) *AppError {
	return &AppError{Code: ErrCodeDeprecatedType, Message: message}
}

// FileRejected creates a new FileRejected error.
func FileRejected(message string) *AppError {
	return &AppError{Code: ErrCodeFileRejected, Message: message}
}

// FileRejectedf creates a new FileRejected error with formatted message.
func FileRejectedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeFileRejected, Message: fmt.Sprintf(format, args...)}
}

// Collaborator creates a new Collaborator error.
func Collaborator(message string) *AppError {
	return &AppError{Code: ErrCodeCollaborator, Message: message}
}

// Timeout creates a new Timeout error.
func Timeout(message string) *AppError {
	return &AppError{Code: ErrCodeTimeout, Message: message}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsDeprecatedType checks if an error is a DeprecatedType error.
func IsDeprecatedType(err error) bool {
	return isCode(err, ErrCodeDeprecatedType)
}

// IsFileRejected checks if an error is a FileRejected error.
func IsFileRejected(err error) bool {
	return isCode(err, ErrCodeFileRejected)
}

// IsCollaborator checks if an error is a Collaborator error.
func IsCollaborator(err error) bool {
	return isCode(err, ErrCodeCollaborator)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Sanitized returns a message that is safe to record on a job row or return
// to a caller. AppError messages are trusted by construction; anything else
// collapses to a generic message so driver and transport errors (which may
// carry connection strings or response bodies) never leak.
func Sanitized(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "job execution failed"
}
