package gmerror

import (
	"net/http"

	"github.com/pkg/errors"
)

// Tags rendered in error responses.
const (
	TagInvalidAuth     = "invalid-auth"
	TagInvalidParams   = "invalid-parameters"
	TagInvalidItem     = "invalid-item"
	TagNotFound        = "not-found"
	TagAlreadyExists   = "already-exists"
	TagImmutableField  = "immutable-field"
	TagInternalFailure = "internal-failure"
)

type (
	// An Error represents the error format rendered by the collection server.
	Error struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if gmerr, ok := errors.Cause(err).(*Error); ok && gmerr.HTTPCode != 0 {
		return gmerr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new Error with the given message.
func New(message string) *Error {
	return &Error{HTTPCode: http.StatusBadRequest, FieldError: err{Message: message}}
}

// NewWithTagCode returns a new Error with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *Error {
	return &Error{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a new not found Error.
func NotFound(message string) *Error {
	return NewWithTagCode(http.StatusNotFound, TagNotFound, message)
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.FieldError.Message
}

// Tag returns the machine readable kind of the error.
func (e *Error) Tag() string {
	return e.FieldError.Tag
}
