package auth

import (
	"testing"

	"immobilien-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret-test-secret-test-secret!"
	user := models.User{
		ID:    42,
		Email: "vermieter@test.de",
		Role:  models.RoleLandlord,
	}

	signed, err := GenerateToken(secret, &user)
	require.NoError(t, err)

	claims := &JWTCustomClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(tok *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "vermieter@test.de", claims.Email)
	assert.Equal(t, models.RoleLandlord, claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	user := models.User{ID: 1, Email: "a@test.de", Role: models.RoleLandlord}

	signed, err := GenerateToken("secret-one-secret-one-secret-one!!!!", &user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &JWTCustomClaims{}, func(tok *jwt.Token) (any, error) {
		return []byte("secret-two-secret-two-secret-two!!!!"), nil
	})
	assert.Error(t, err)
}
