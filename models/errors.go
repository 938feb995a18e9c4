// models/errors.go
package models

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error taxonomy surfaced to API callers.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Code so wrapped errors with a different message still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrTransientStore = &AppError{Code: http.StatusInternalServerError, Message: "store failure"}
)

// NewAppError returns an error of the same kind as base with a specific message.
func NewAppError(base *AppError, format string, args ...interface{}) *AppError {
	return &AppError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// StatusCode maps any error to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
