// Package common contains shared constants and sentinel errors used across
// exoscope components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName tags each outgoing request for server-side tracing.
	RequestIDHeaderName = "X-Request-ID"
)
