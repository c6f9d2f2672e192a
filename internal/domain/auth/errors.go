package auth

import "errors"

// Resolution and authorization failures. Resolution-stage errors never escape the
// request pipeline; they degrade to "unauthenticated" and the policy stage decides
// the response shape.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrIdentityNotFound is returned when a valid token names a user that no longer
	// exists or has been deactivated.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrAuthenticationRequired is returned when a gated route has no bound identity.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAuthorizationDenied is returned when the bound role is not permitted.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrSessionFixation signals that a freshly minted session id equals the one the
	// client presented. It is logged and never shown to users.
	ErrSessionFixation = errors.New("session id reused across authentication")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)
