// Package credstore exposes the user repository as the credential store the
// auth core consumes.
package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/starter-squad/lms/internal/core"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/ports"
)

// Store looks identities up by email and verifies passwords against their hash.
type Store struct {
	users  core.UserRepository
	hasher ports.PasswordHasher
}

var _ ports.CredentialStore = (*Store)(nil)

// New returns a Store over users. hasher verifies stored password hashes.
func New(users core.UserRepository, hasher ports.PasswordHasher) *Store {
	return &Store{users: users, hasher: hasher}
}

// FindByEmail returns the identity for email, compared case-insensitively.
func (s *Store) FindByEmail(ctx context.Context, email string) (domainauth.Identity, error) {
	email = domainauth.NormalizeEmail(email)
	if email == "" {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return domainauth.Identity{}, domainauth.ErrIdentityNotFound
		}
		return domainauth.Identity{}, fmt.Errorf("lookup identity: %w", err)
	}
	return u.Identity(), nil
}

// VerifyPassword reports whether plaintext matches the identity's stored hash.
func (s *Store) VerifyPassword(_ context.Context, identity domainauth.Identity, plaintext string) bool {
	if identity.PasswordHash == "" || plaintext == "" {
		return false
	}
	return s.hasher.Verify(identity.PasswordHash, plaintext)
}
