package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error type shared by every layer.
// Code drives the HTTP status, Message is safe to show to clients,
// Err is the internal cause and only goes to the logs.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so sentinel values compare equal to
// errors built from them with a different message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Newf(code int, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap hides a system error behind a generic internal error.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Database wraps any store failure. The cause is never inspected.
func Database(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// Validation builds a 422-class error carrying per-field details.
func Validation(message string, fields ...FieldError) *AppError {
	if len(fields) == 0 {
		fields = []FieldError{{Rule: "invalid", Message: message}}
	}
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: message,
		Fields:  fields,
	}
}

// =========================================
// Error codes
// =========================================
// - 404xx: resource not found
// - 409xx: invalid input
// - 500xx: server side failures

const (
	ErrCodeInternal       = 50000
	ErrCodeDatabaseError  = 50001
	ErrCodeCacheError     = 50002
	ErrCodeMessagingError = 50003

	ErrCodeNotFound       = 40400
	ErrCodeAuthorNotFound = 40401
	ErrCodeBookNotFound   = 40402
	ErrCodeUserNotFound   = 40403
	ErrCodeReviewNotFound = 40404

	ErrCodeInvalidParams  = 40900
	ErrCodeBindError      = 40901
	ErrCodeFilterMismatch = 40902
	ErrCodeInvalidID      = 40903
)

var (
	ErrInternal      = New(ErrCodeInternal, "Internal Server Error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrNotFound      = New(ErrCodeNotFound, "not found")
	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
)

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError, wrapping anything else as internal.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal Server Error")
}

// IsNotFound reports whether err belongs to the 404xx family.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code/100 == 404
}

// IsValidation reports whether err belongs to the 409xx family.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code/100 == 409
}

// HTTPStatus maps a business code onto the HTTP status sent to clients.
func HTTPStatus(code int) int {
	switch code / 100 {
	case 404:
		return http.StatusNotFound
	case 409:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
