package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MinJWTSecretBytes is the shortest HMAC secret accepted at startup.
	MinJWTSecretBytes = 32

	minTokenTTL    = time.Minute
	minBcryptCost  = 4
	maxBcryptCost  = 31
	defaultIssuer  = "starter-squad-lms"
	defaultCookie  = "session_id"
	defaultIdle    = 30 * time.Minute
	defaultMaxLife = 12 * time.Hour
)

// ErrJWTSecretTooShort is returned by Validate when AUTH_JWT_SECRET is missing or weak.
var ErrJWTSecretTooShort = fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinJWTSecretBytes)

// AuthConfig groups token, session and password hashing configuration.
type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens (HS256).
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	// JWTIssuer is written to and required in the iss claim.
	JWTIssuer string `env:"AUTH_JWT_ISSUER" envDefault:"starter-squad-lms"`

	// TokenTTL is the bearer token lifetime.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`

	Session SessionConfig `envPrefix:"AUTH_SESSION_"`

	// BcryptCost is the work factor for new password hashes.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// SessionConfig controls server-side sessions and their cookie.
type SessionConfig struct {
	CookieName      string        `env:"COOKIE_NAME"      envDefault:"session_id"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT"     envDefault:"30m"`
	AbsoluteTimeout time.Duration `env:"ABSOLUTE_TIMEOUT" envDefault:"12h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.JWTIssuer = strings.TrimSpace(a.JWTIssuer)
	if a.JWTIssuer == "" {
		a.JWTIssuer = defaultIssuer
	}
	if a.TokenTTL < minTokenTTL {
		a.TokenTTL = minTokenTTL
	}
	if a.BcryptCost < minBcryptCost {
		a.BcryptCost = minBcryptCost
	}
	if a.BcryptCost > maxBcryptCost {
		a.BcryptCost = maxBcryptCost
	}
	a.Session.Sanitize()
}

// Validate fails when the signing secret is too short to be safe.
func (a *AuthConfig) Validate() error {
	if len(a.JWTSecret) < MinJWTSecretBytes {
		return ErrJWTSecretTooShort
	}
	if a.Session.IdleTimeout > a.Session.AbsoluteTimeout {
		return errors.New("AUTH_SESSION_IDLE_TIMEOUT exceeds AUTH_SESSION_ABSOLUTE_TIMEOUT")
	}
	return nil
}

// Sanitize fills empty values and keeps the idle window inside the absolute lifetime.
func (s *SessionConfig) Sanitize() {
	s.CookieName = strings.TrimSpace(s.CookieName)
	if s.CookieName == "" {
		s.CookieName = defaultCookie
	}
	if s.AbsoluteTimeout <= 0 {
		s.AbsoluteTimeout = defaultMaxLife
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = defaultIdle
	}
	if s.IdleTimeout > s.AbsoluteTimeout {
		s.IdleTimeout = s.AbsoluteTimeout
	}
}
