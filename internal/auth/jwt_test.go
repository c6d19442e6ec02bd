package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/auth"
)

func testUser() *auth.User {
	return &auth.User{
		Email:   "marie.env@smartcity.demo",
		Name:    "Marie Dubois",
		Persona: auth.PersonaEnv,
		Role:    "Responsable Environnement",
	}
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
	})

	token, expiresAt, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.AccessTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "marie.env@smartcity.demo", claims.Subject)
	assert.Equal(t, "Marie Dubois", claims.Name)
	assert.Equal(t, auth.PersonaEnv, claims.Persona)
	assert.Equal(t, "Responsable Environnement", claims.Role)
	assert.Equal(t, "smartcity-api", claims.Issuer)
	assert.Equal(t, testUser(), claims.User())
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not-a-jwt"},
		{"malformed jwt", "eyJhbGciOiJIUzI1NiJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := issued

	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
		Now:        func() time.Time { return now },
	})

	token, expiresAt, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, issued.Add(12*time.Hour), expiresAt)

	now = issued.Add(11 * time.Hour)
	_, err = svc.ValidateAccessToken(token)
	require.NoError(t, err)

	now = issued.Add(13 * time.Hour)
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	svc1 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "key-one",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
	})

	token, _, err := svc1.GenerateAccessToken(testUser())
	require.NoError(t, err)

	svc2 := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "key-two",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
	})

	_, err = svc2.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestJWTService_WrongIssuerOrAudience(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-key",
		Issuer:     "issuer-one",
		Audience:   "audience-one",
	})

	token, _, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	tests := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong issuer", "issuer-two", "audience-one"},
		{"wrong audience", "issuer-one", "audience-two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := auth.NewJWTService(auth.JWTConfig{
				SigningKey: "test-key",
				Issuer:     tt.issuer,
				Audience:   tt.audience,
			})
			_, err := other.ValidateAccessToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}
