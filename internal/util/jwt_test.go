package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(7, "secret")
	require.NoError(t, err)

	userID, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(7, "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", "secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractToken(r))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
