package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence, token claims and cookies.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// legacyStudentAlias is the role name older records carry for students.
const legacyStudentAlias = "USER"

// AllRoles returns every role in a stable order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleInstructor, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// SessionEligible reports whether the role renders server-side pages and therefore
// receives a session at login in addition to a bearer token.
func (r Role) SessionEligible() bool {
	switch r {
	case RoleInstructor, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes a role name. Matching is case-insensitive and accepts the
// legacy "USER" alias for students.
func ParseRole(value string) (Role, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == legacyStudentAlias {
		return RoleStudent, true
	}
	r := Role(v)
	if r.Valid() {
		return r, true
	}
	return "", false
}

// RoleSet is an explicit "any of" list. Membership is exact; there is no hierarchy.
type RoleSet []Role

// Contains reports whether r is one of the listed roles.
func (s RoleSet) Contains(r Role) bool {
	for _, candidate := range s {
		if candidate == r {
			return true
		}
	}
	return false
}

// Identity is the credential-store view of a user.
type Identity struct {
	UserID       string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Active       bool
}

// NormalizeEmail lower-cases and trims an email for case-insensitive comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (random URL-safe string). The identity
// fields are a snapshot taken when the session was created and never change.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its absolute expiry or has been idle
// longer than idle at instant now. A zero idle disables the idle check.
func (s Session) Expired(now time.Time, idle time.Duration) bool {
	if !now.Before(s.ExpiresAt) {
		return true
	}
	if idle > 0 && now.Sub(s.LastSeenAt) > idle {
		return true
	}
	return false
}

// Source records which resolver bound a principal.
type Source string

const (
	SourceToken   Source = "token"
	SourceSession Source = "session"
)

// Principal is the single authoritative identity bound to a request.
type Principal struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Source    Source `json:"source"`
	SessionID string `json:"-"`
}

// PrincipalFromIdentity builds a token-sourced principal from a fresh identity lookup.
func PrincipalFromIdentity(id Identity) Principal {
	return Principal{
		UserID: id.UserID,
		Email:  id.Email,
		Name:   id.Name,
		Role:   id.Role,
		Source: SourceToken,
	}
}

// PrincipalFromSession builds a session-sourced principal from the stored snapshot.
func PrincipalFromSession(s Session) Principal {
	return Principal{
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Role:      s.Role,
		Source:    SourceSession,
		SessionID: s.ID,
	}
}
