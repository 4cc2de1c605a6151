package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3r-secret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Sup3r-secret!", hash)

	assert.True(t, VerifyPassword("Sup3r-secret!", hash))
	assert.False(t, VerifyPassword("wrong-password", hash))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := HashPassword("Sup3r-secret!")
	require.NoError(t, err)
	second, err := HashPassword("Sup3r-secret!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "not-a-bcrypt-hash"))
}
