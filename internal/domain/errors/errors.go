package errors

import (
	"errors"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrReference           = errors.New("referenced resource does not exist")
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeReferenceError      = "REFERENCE_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError is a domain error with a machine readable code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, ErrNotFound)
}

func ConstraintViolation(message string) *AppError {
	return NewAppError(CodeConstraintViolation, message, ErrConstraintViolation)
}

func ReferenceError(message string) *AppError {
	return NewAppError(CodeReferenceError, message, ErrReference)
}

func ConcurrencyConflict(message string) *AppError {
	return NewAppError(CodeConcurrencyConflict, message, ErrConcurrencyConflict)
}

func BadRequest(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternalError when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}
