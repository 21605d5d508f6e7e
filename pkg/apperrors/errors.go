package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Type groups errors by how they surface to clients.
type Type string

const (
	TypeValidation      Type = "validation"
	TypeNotFound        Type = "not_found"
	TypeUnauthorized    Type = "unauthorized"
	TypeForbidden       Type = "forbidden"
	TypePaymentRequired Type = "payment_required"
	TypeExternal        Type = "external"
	TypeInternal        Type = "internal"
)

// AppError is an error with a client-safe message and an HTTP status.
// Cause is logged, never sent to clients.
type AppError struct {
	Type       Type   `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Cause      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func Validation(message string) *AppError {
	return &AppError{Type: TypeValidation, Message: message, StatusCode: http.StatusBadRequest}
}

func NotFound(message string) *AppError {
	return &AppError{Type: TypeNotFound, Message: message, StatusCode: http.StatusNotFound}
}

func Unauthorized(message string) *AppError {
	return &AppError{Type: TypeUnauthorized, Message: message, StatusCode: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Type: TypeForbidden, Message: message, StatusCode: http.StatusForbidden}
}

func PaymentRequired(message string) *AppError {
	return &AppError{Type: TypePaymentRequired, Message: message, StatusCode: http.StatusPaymentRequired}
}

// External wraps a failed call to a third-party platform (video host, storage, payments).
func External(message string, cause error) *AppError {
	return &AppError{Type: TypeExternal, Message: message, StatusCode: http.StatusBadGateway, Cause: cause}
}

func Internal(message string, cause error) *AppError {
	return &AppError{Type: TypeInternal, Message: message, StatusCode: http.StatusInternalServerError, Cause: cause}
}

// IsType reports whether err (or anything it wraps) is an AppError of type t.
func IsType(err error, t Type) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// StatusCode returns the HTTP status for err; 500 for anything that is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Unexpected error"
}
