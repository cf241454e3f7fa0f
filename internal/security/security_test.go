package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smartparking-backend/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager(secret, "smartparking", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, expiresAt, err := tm.GenerateAccessToken("desk1", []string{config.RoleOperator})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "desk1", claims.Username)
		assert.True(t, claims.HasRole(config.RoleOperator))
		assert.False(t, claims.HasRole(config.RoleAdmin))
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", "smartparking", time.Hour)
		token, _, err := other.GenerateAccessToken("desk1", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := OperatorClaims{
			Username: "desk1",
			Type:     TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    "smartparking",
				Audience:  jwt.ClaimStrings{accessAudience},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("WrongType", func(t *testing.T) {
		claims := OperatorClaims{
			Username: "desk1",
			Type:     "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
				Issuer:    "smartparking",
				Audience:  jwt.ClaimStrings{accessAudience},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestOperatorAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := NewOperatorAuthenticator([]config.OperatorConfig{
		{Username: "Desk1", PasswordHash: string(hash)},
		{Username: "admin", PasswordHash: string(hash), Roles: []string{config.RoleOperator, config.RoleAdmin}},
	})

	roles, err := auth.Authenticate("desk1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, []string{config.RoleOperator}, roles)

	roles, err = auth.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, roles, config.RoleAdmin)

	_, err = auth.Authenticate("desk1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate("nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
