package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/api/middleware"
	"github.com/smartcity/smartcity/internal/auth"
)

func testJWTService(now func() time.Time) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
		Now:        now,
	})
}

func testToken(t *testing.T, svc *auth.JWTService) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(&auth.User{
		Email:   "citoyen@smartcity.demo",
		Name:    "Citoyen",
		Persona: auth.PersonaCitizen,
		Role:    "Citoyen",
	})
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_RejectsBadHeaders(t *testing.T) {
	handler := middleware.Auth(testJWTService(nil))(okHandler())

	tests := []struct {
		name   string
		header string
		detail string
	}{
		{"missing", "", "missing authorization header"},
		{"no bearer prefix", "token123", "invalid authorization header format"},
		{"basic auth", "Basic dXNlcjpwYXNz", "invalid authorization header format"},
		{"just bearer", "Bearer", "invalid authorization header format"},
		{"empty bearer", "Bearer   ", "missing bearer token"},
		{"garbage token", "Bearer invalid.jwt.token", "invalid access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestAuth_ValidToken(t *testing.T) {
	svc := testJWTService(nil)

	var email string
	var persona auth.Persona
	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email = middleware.GetUserEmail(r.Context())
		persona = middleware.GetClaims(r.Context()).Persona
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", http.NoBody)
	req.Header.Set("Authorization", "bearer "+testToken(t, svc))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "citoyen@smartcity.demo", email)
	assert.Equal(t, auth.PersonaCitizen, persona)
}

func TestAuth_ExpiredToken(t *testing.T) {
	now := time.Now()
	svc := testJWTService(func() time.Time { return now })
	token := testToken(t, svc)
	now = now.Add(13 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware.Auth(svc)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token has expired")
}

func TestGetClaims_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Nil(t, middleware.GetClaims(req.Context()))
	assert.Empty(t, middleware.GetUserEmail(req.Context()))
}
