// Package apperr defines the error kinds surfaced to API clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a client-facing failure.
type Kind string

const (
	MissingToken          Kind = "MissingToken"
	InvalidOrExpiredToken Kind = "InvalidOrExpiredToken"
	InsufficientRole      Kind = "InsufficientRole"
	InvalidCredentials    Kind = "InvalidCredentials"
	DuplicateIdentity     Kind = "DuplicateIdentity"
	MalformedRequest      Kind = "MalformedRequest"
	NotFound              Kind = "NotFound"
	Internal              Kind = "Internal"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case MissingToken, InvalidOrExpiredToken, InvalidCredentials:
		return http.StatusUnauthorized
	case InsufficientRole:
		return http.StatusForbidden
	case DuplicateIdentity:
		return http.StatusConflict
	case MalformedRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure with a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// New builds an *Error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}
