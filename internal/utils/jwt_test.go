package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "ADMIN", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestJWTRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT(1, "USER", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "another-secret-987654")
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "USER", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, testSecret)
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", testSecret)
	assert.Error(t, err)
}

func TestJWTRejectsForeignIssuer(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(signed, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
