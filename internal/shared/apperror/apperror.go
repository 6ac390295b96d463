// Package apperror defines the error taxonomy surfaced by the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the client.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindInternal     Kind = "INTERNAL"
)

// Error is returned by handlers and services; response.Error renders it.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Details holds per-field messages for validation failures.
	Details map[string]any
	// Extra is merged into the top-level response body (e.g. a relation count).
	Extra map[string]any
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation is a 400 with field-level details.
func Validation(message string, details map[string]any) *Error {
	if message == "" {
		message = "Datos inválidos"
	}
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

// Unauthorized is a 401.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "No autorizado"
	}
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// NotFound is a 404 naming the missing entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: entity + " no encontrado"}
}

// Conflict defaults to 409; a zero status keeps the default.
func Conflict(status int, message string) *Error {
	if status == 0 {
		status = http.StatusConflict
	}
	return &Error{Kind: KindConflict, Status: status, Message: message}
}

// Internal wraps an unexpected failure; the cause is never sent to the client.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Error interno del servidor", Err: err}
}

// WithExtra attaches top-level response fields and returns e.
func (e *Error) WithExtra(extra map[string]any) *Error {
	e.Extra = extra
	return e
}

// From converts any error into an *Error; unknown errors become Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
