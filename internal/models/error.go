package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcomes. ErrInvalidCredentials covers both "user not
	// found" and "password mismatch" so the two are indistinguishable from
	// outside the server.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Session outcomes. ErrSessionExpired is distinct from ErrUnauthenticated
	// so clients can prompt a re-login instead of a generic login wall.
	ErrUnauthenticated = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrForbidden       = errors.New("forbidden")

	// IP access outcomes. ErrIPBlocked is the failed-login lockout;
	// ErrIPNotAuthorized is the admin-curated allow/block rule evaluation.
	ErrIPBlocked       = errors.New("ip address is blocked")
	ErrIPNotAuthorized = errors.New("ip address is not authorized")

	ErrRateLimited = errors.New("rate limit exceeded")
)
