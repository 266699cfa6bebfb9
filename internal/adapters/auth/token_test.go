package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	secret := "test-secret"
	issuer, verifier := NewJWTCodec(secret)

	token, err := issuer.Issue("user-123", "u@example.com", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)

	userID, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTCodec_Verify_wrong_secret(t *testing.T) {
	issuer, _ := NewJWTCodec("secret-a")
	_, verifier := NewJWTCodec("secret-b")

	token, err := issuer.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTCodec_Verify_expired(t *testing.T) {
	issuer, verifier := NewJWTCodec("secret")

	token, err := issuer.Issue("user-123", "u@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTCodec_Verify_garbage(t *testing.T) {
	_, verifier := NewJWTCodec("secret")
	_, err := verifier.Verify("not.a.token")
	assert.Error(t, err)
}
