package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute)

	token, err := maker.GenerateToken("8d7f6f9e-1111-4444-8888-aaaaaaaaaaaa", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "8d7f6f9e-1111-4444-8888-aaaaaaaaaaaa", claims.UserUID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, claims.UserUID, claims.Subject)
}

func TestMaker_ExpiredToken(t *testing.T) {
	maker := NewJWTMaker("test-secret", -time.Minute)

	token, err := maker.GenerateToken("uid", "user@example.com")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.Error(t, err)
}

func TestMaker_WrongSecret(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute)
	other := NewJWTMaker("other-secret", time.Minute)

	token, err := maker.GenerateToken("uid", "user@example.com")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}
