package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTClaimsAccessors(t *testing.T) {
	now := time.Now()

	claims := &identity.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, 30)),
		},
		UID:      "user-123",
		Name:     "alice",
		Mail:     "alice@example.com",
		DoB:      "1990-03-12",
		SID:      "session-abc",
		AuthTime: now.Unix(),
		RoleSet:  []string{"Administrator", "User"},
	}

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, "alice@example.com", claims.Email())
	assert.Equal(t, "session-abc", claims.SessionID())
	assert.Equal(t, []string{"Administrator", "User"}, claims.Roles())
	assert.True(t, claims.HasRole("User"))
	assert.False(t, claims.HasRole("Auditor"))
	assert.Equal(t, now.Unix(), claims.AuthenticatedAt().Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt().Unix())
	assert.Equal(t, now.AddDate(0, 0, 30).Unix(), claims.Expires().Unix())

	dob, err := claims.DateOfBirth()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC), dob)
}

func TestJWTClaimsFallbacks(t *testing.T) {
	t.Run("user id falls back to subject", func(t *testing.T) {
		claims := &identity.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-only"},
		}

		assert.Equal(t, "subject-only", claims.UserID())
	})

	t.Run("zero claims yield zero times", func(t *testing.T) {
		claims := &identity.JWTClaims{}

		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
		assert.True(t, claims.AuthenticatedAt().IsZero())
	})

	t.Run("missing dob is a parse error", func(t *testing.T) {
		claims := &identity.JWTClaims{}

		_, err := claims.DateOfBirth()
		assert.Error(t, err)
	})

	t.Run("no roles means no role matches", func(t *testing.T) {
		claims := &identity.JWTClaims{}

		assert.Empty(t, claims.Roles())
		assert.False(t, claims.HasRole("User"))
	})
}
