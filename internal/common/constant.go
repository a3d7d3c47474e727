// Package common contains shared constants and helpers used across
// fraudwatch client components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the raw token in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates a client log line with the service log.
	RequestIDHeaderName = "X-Request-ID"
)
