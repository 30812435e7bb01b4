package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "user-1", "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), tok.Exp, 5*time.Second)

	userID, username, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "alice", username)
}

func TestParseAccessTokenRejections(t *testing.T) {
	tok, err := NewAccessToken("secret", "user-1", "alice", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrBadToken)

	_, _, err = ParseAccessToken("secret", "not.a.jwt")
	assert.ErrorIs(t, err, ErrBadToken)

	expired, err := NewAccessToken("secret", "user-1", "alice", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseAccessToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestHashPasswordCostFallback(t *testing.T) {
	// out-of-range costs hash with the bcrypt default instead of failing
	for _, cost := range []int{0, -1, 99} {
		hash, err := HashPassword("s3cret", cost)
		require.NoError(t, err, "cost %d", cost)
		assert.True(t, VerifyPassword(hash, "s3cret"))
	}
}
