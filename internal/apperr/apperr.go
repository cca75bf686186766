// Package apperr defines the error taxonomy shared by every store and
// handler. Each error carries the HTTP status the boundary layer should
// answer with, so the mapping from domain failure to response code lives
// in exactly one place.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}

// From unwraps err down to an *Error if one is anywhere in the chain.
// Returns nil when the failure is untyped (the boundary answers 500 for
// those, without leaking the underlying message).
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
