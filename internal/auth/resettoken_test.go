package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	raw, hashed, err := GenerateToken()
	require.NoError(t, err)

	// 20 random bytes hex-encoded.
	assert.Len(t, raw, 40)
	assert.Len(t, hashed, 64)
	assert.NotEqual(t, raw, hashed)

	assert.True(t, TokenMatches(raw, hashed))
	assert.False(t, TokenMatches("some-other-string", hashed))
	assert.False(t, TokenMatches(raw, HashToken("some-other-string")))
}

func TestTokenMatchesEmptyHash(t *testing.T) {
	// An account with no outstanding token must never match.
	assert.False(t, TokenMatches("anything", ""))
	assert.False(t, TokenMatches("", ""))
}

func TestGenerateTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, _, err := GenerateToken()
		require.NoError(t, err)
		require.False(t, seen[raw], "duplicate token generated")
		seen[raw] = true
	}
}
