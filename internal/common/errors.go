// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid, expired, malformed or mis-signed token).
	ErrInvalidToken = errors.New("invalid token")

	// Configuration errors.
	ErrorEmptySecret = errors.New("empty secret key")
)
