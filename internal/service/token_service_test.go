package service

import (
	"testing"
	"time"

	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenTestConfig(secret string, expiry time.Duration) *config.Config {
	return &config.Config{JWTSecret: secret, JWTExpiry: expiry}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(newTokenTestConfig("test-secret", time.Hour))

	token, err := svc.GenerateToken("alice", TokenTypeLearner)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenTypeLearner, claims.TokenType)
	assert.Equal(t, "alice", claims.Subject)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService(newTokenTestConfig("test-secret", time.Hour))

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService(newTokenTestConfig("other-secret", time.Hour))
		token, err := other.GenerateToken("alice", TokenTypeLearner)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewTokenService(newTokenTestConfig("test-secret", -time.Minute))
		token, err := short.GenerateToken("alice", TokenTypeInstructor)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
