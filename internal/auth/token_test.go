package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	signed, err := tokens.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	id, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Minute)

	issuedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }
	signed, err := tokens.Issue(42)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_WrongSecret(t *testing.T) {
	signed, err := NewTokens([]byte("secret-a"), time.Hour).Issue(42)
	require.NoError(t, err)

	_, err = NewTokens([]byte("secret-b"), time.Hour).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Garbage(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tokens.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3nh4-forte")
	require.NoError(t, err)
	require.NotEqual(t, "s3nh4-forte", hash)

	require.NoError(t, CheckPassword(hash, "s3nh4-forte"))
	require.ErrorIs(t, CheckPassword(hash, "errada"), ErrInvalidCredentials)
}
