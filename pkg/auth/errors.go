package auth

import "errors"

// Errors returned by the auth package.
var (
	// ErrConnectionDeclined is returned when the bridge refuses the
	// handshake (Spec Section 4.4, 7; Open Question b: treated as
	// fatal).
	ErrConnectionDeclined = errors.New("auth: bridge declined connection")

	// ErrAuthFailed is returned when the login sequence does not yield
	// a token (e.g. the bridge closes the transport mid-handshake).
	ErrAuthFailed = errors.New("auth: authentication failed")
)
