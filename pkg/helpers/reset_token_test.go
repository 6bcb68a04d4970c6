package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
)

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, raw, 40)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(raw))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("123456")
	require.NoError(t, err)

	assert.True(t, h.Compare(hash, "123456"))
	assert.False(t, h.Compare(hash, "654321"))
}

func TestBcryptHasher_TooLongIsBadRequest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	// 25 three-byte runes: under 72 characters but 75 bytes.
	_, err := h.Hash(strings.Repeat("€", 25))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "Password can not be more than 72 bytes", apperror.PublicMessage(err))

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
