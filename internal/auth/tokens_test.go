package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/auth"
)

func newTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(auth.Config{
		JWTSecret:            "test-signing-key",
		AccessTokenTTL:       30 * time.Minute,
		ConfirmationTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	return tokens
}

func TestNewTokens(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTokens(auth.Config{JWTSecret: ""})
	assert.Error(t, err)
}

func TestTokens_ResolveSubject(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t)

	t.Run("access token round trip", func(t *testing.T) {
		t.Parallel()
		token, err := tokens.IssueAccessToken("user@example.com")
		require.NoError(t, err)

		subject, err := tokens.ResolveSubject(token, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", subject)
	})

	t.Run("confirmation token round trip", func(t *testing.T) {
		t.Parallel()
		token, err := tokens.IssueConfirmationToken("user@example.com")
		require.NoError(t, err)

		subject, err := tokens.ResolveSubject(token, auth.TokenTypeConfirmation)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", subject)
	})

	t.Run("access token rejected as confirmation", func(t *testing.T) {
		t.Parallel()
		token, err := tokens.IssueAccessToken("user@example.com")
		require.NoError(t, err)

		_, err = tokens.ResolveSubject(token, auth.TokenTypeConfirmation)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("confirmation token rejected as access", func(t *testing.T) {
		t.Parallel()
		token, err := tokens.IssueConfirmationToken("user@example.com")
		require.NoError(t, err)

		_, err = tokens.ResolveSubject(token, auth.TokenTypeAccess)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		expired, err := auth.NewTokens(auth.Config{
			JWTSecret:      "test-signing-key",
			AccessTokenTTL: -time.Minute,
		})
		require.NoError(t, err)

		token, err := expired.IssueAccessToken("user@example.com")
		require.NoError(t, err)

		_, err = expired.ResolveSubject(token, auth.TokenTypeAccess)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		_, err := tokens.ResolveSubject("not.a.token", auth.TokenTypeAccess)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		t.Parallel()
		other, err := auth.NewTokens(auth.Config{
			JWTSecret:      "another-signing-key",
			AccessTokenTTL: 30 * time.Minute,
		})
		require.NoError(t, err)

		token, err := other.IssueAccessToken("user@example.com")
		require.NoError(t, err)

		_, err = tokens.ResolveSubject(token, auth.TokenTypeAccess)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
