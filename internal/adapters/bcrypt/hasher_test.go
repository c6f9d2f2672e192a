package bcrypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbcrypt "golang.org/x/crypto/bcrypt"
)

func TestNewHasher_CostClamp(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, xbcrypt.MinCost, NewHasher(1).Cost())
	assert.Equal(t, xbcrypt.MaxCost, NewHasher(99).Cost())
	assert.Equal(t, 12, NewHasher(12).Cost())
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(xbcrypt.MinCost)

	hash, err := h.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))

	assert.True(t, h.Verify(hash, "correct-horse"))
	assert.False(t, h.Verify(hash, "Correct-horse"))
	assert.False(t, h.Verify("", "correct-horse"))
	assert.False(t, h.Verify("not-a-hash", "correct-horse"))
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	_, err := NewHasher(xbcrypt.MinCost).Hash(strings.Repeat("x", 73))
	assert.Error(t, err)
}
