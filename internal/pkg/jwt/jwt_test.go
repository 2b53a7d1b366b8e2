package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("5f0c7a3e-1111-4c1b-9a7e-000000000001", "admin@example.com", "Admin", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "5f0c7a3e-1111-4c1b-9a7e-000000000001", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidateSessionToken_Expired(t *testing.T) {
	token, err := GenerateSessionToken("u1", "a@b.com", "Viewer", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("u1", "a@b.com", "Viewer", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	_, err := ValidateSessionToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateSessionToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "u1",
		Role:   "Admin",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
