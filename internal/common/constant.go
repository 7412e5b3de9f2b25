// Package common contains shared constants and sentinel errors used across
// usersvc components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"
)
