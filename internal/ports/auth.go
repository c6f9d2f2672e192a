package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

// CredentialStore is the narrow view of the user store the auth core consumes.
type CredentialStore interface {
	// FindByEmail returns the identity for email (case-insensitive) or
	// domainauth.ErrIdentityNotFound when absent.
	FindByEmail(ctx context.Context, email string) (domainauth.Identity, error)
	// VerifyPassword reports whether plaintext matches the identity's stored hash.
	VerifyPassword(ctx context.Context, identity domainauth.Identity, plaintext string) bool
}

// PasswordHasher is the one-way password primitive.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// TokenClaims is the validated content of a bearer token.
type TokenClaims struct {
	Subject   string // email
	Role      domainauth.Role
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints and validates signed, time-bounded bearer tokens.
type TokenIssuer interface {
	Issue(identity domainauth.Identity) (token string, expiresAt time.Time, err error)
	// Validate returns domainauth.ErrInvalidToken for malformed, badly signed or
	// expired tokens. It never consults the credential store.
	Validate(token string) (TokenClaims, error)
}

// SessionStore persists and retrieves user sessions. Every mutation is atomic
// per session id.
type SessionStore interface {
	// Save stores a new session. ttl bounds how long the backing record lives.
	Save(ctx context.Context, sess domainauth.Session, ttl time.Duration) error
	// Get returns domainauth.ErrSessionNotFound when the id is unknown.
	Get(ctx context.Context, id string) (domainauth.Session, error)
	// Touch records activity at seenAt and extends the record's lifetime to ttl.
	// Touching a missing session is a no-op that returns domainauth.ErrSessionNotFound.
	Touch(ctx context.Context, id string, seenAt time.Time, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every session of userID and returns how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
