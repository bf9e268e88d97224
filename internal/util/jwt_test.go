package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, testSecret)
	require.NoError(t, err)

	userID, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, testSecret)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestUnsubscribeTokenRoundTrip(t *testing.T) {
	token, err := GenerateUnsubscribeToken(42, testSecret)
	require.NoError(t, err)

	userID, err := ParseUnsubscribeToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestSessionTokenIsNotAnUnsubscribeToken(t *testing.T) {
	token, err := GenerateJWT(42, testSecret)
	require.NoError(t, err)

	_, err = ParseUnsubscribeToken(token, testSecret)
	assert.Error(t, err, "purpose claim must be checked")
}

func TestExtractToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractToken(req))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
