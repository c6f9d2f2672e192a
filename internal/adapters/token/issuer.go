// Package token implements the bearer token issuer on HS256-signed JWTs.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/ports"
)

// MinSecretLen is the shortest HMAC secret the issuer accepts.
const MinSecretLen = 32

// DefaultTTL is the bearer token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Config configures an Issuer.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Issuer mints and validates bearer tokens. Tokens are not tracked server-side
// and cannot be revoked before they expire.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

// Claims is the JWT payload. The subject is the user's email.
type Claims struct {
	Role string `json:"role"`
	UID  string `json:"uid"`
	jwt.RegisteredClaims
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		secret: cfg.Secret,
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for identity that expires TTL after the current instant.
func (i *Issuer) Issue(identity domainauth.Identity) (string, time.Time, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return "", time.Time{}, errors.New("identity email is required")
	}
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	claims := Claims{
		Role: string(identity.Role),
		UID:  identity.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt.Truncate(time.Second), nil
}

// Validate verifies signature, structure and expiry. Every failure is reported
// as domainauth.ErrInvalidToken with the parser's reason wrapped alongside.
func (i *Issuer) Validate(token string) (ports.TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ports.TokenClaims{}, domainauth.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return ports.TokenClaims{}, domainauth.ErrInvalidToken
	}

	out := ports.TokenClaims{
		Subject: claims.Subject,
		UserID:  claims.UID,
	}
	if r, ok := domainauth.ParseRole(claims.Role); ok {
		out.Role = r
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// SubjectOf returns the email a valid token was issued to.
func (i *Issuer) SubjectOf(token string) (string, error) {
	claims, err := i.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
