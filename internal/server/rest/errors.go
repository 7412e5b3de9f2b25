package rest

import (
	"errors"
	"net/http"
)

const (
	msgBadRequest     = "Invalid request payload"
	msgInternalServer = "Internal Server Error"

	msgMissingAuth      = "Missing authorization headers"
	msgUserNotFound     = "User not found"
	msgMissingAdmin     = "missing admin permissions"
	msgEmailTaken       = "E-mail already registered."
	msgWrongCredentials = "Wrong email/password"
)

// HTTPError is an error with an HTTP status and a user-facing message.
type HTTPError struct {
	cause   error
	Code    int
	Message string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{cause: errors.New(message), Code: code, Message: message}
}

// NewHTTPErrorWrap keeps cause for logging; only message reaches the client.
func NewHTTPErrorWrap(code int, message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: code, Message: message}
}

func ErrBadRequest(cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusBadRequest, msgBadRequest, cause)
}

func ErrUnauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func ErrForbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

func ErrConflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message)
}

func ErrInternalServer(cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusInternalServerError, msgInternalServer, cause)
}
