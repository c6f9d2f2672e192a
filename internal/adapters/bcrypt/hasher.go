// Package bcrypt adapts golang.org/x/crypto/bcrypt to ports.PasswordHasher.
package bcrypt

import (
	"fmt"

	xbcrypt "golang.org/x/crypto/bcrypt"

	"github.com/starter-squad/lms/internal/ports"
)

// DefaultCost is used when no cost is configured.
const DefaultCost = xbcrypt.DefaultCost

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

var _ ports.PasswordHasher = (*Hasher)(nil)

// NewHasher returns a Hasher. cost is clamped to bcrypt's accepted range and
// zero selects DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < xbcrypt.MinCost:
		cost = xbcrypt.MinCost
	case cost > xbcrypt.MaxCost:
		cost = xbcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the work factor new hashes are created with.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := xbcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h *Hasher) Verify(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return xbcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
