package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/auth"
)

func newAuthService() *auth.Service {
	return auth.NewService(auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key",
		Issuer:     "smartcity-api",
		Audience:   "smartcity-dashboard",
	}))
}

func TestService_Login(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login("  Paul.Elu@SmartCity.demo ", "demo")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(12*3600), resp.ExpiresIn)
	assert.Equal(t, &auth.User{
		Email:   "paul.elu@smartcity.demo",
		Name:    "Paul M.",
		Persona: auth.PersonaElected,
		Role:    "Élu",
	}, resp.User)

	claims, err := svc.ValidateAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User, claims.User())
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	svc := newAuthService()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "nobody@smartcity.demo", "demo"},
		{"wrong password", "citoyen@smartcity.demo", "Demo"},
		{"empty password", "citoyen@smartcity.demo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(tt.email, tt.password)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestDemoUsers(t *testing.T) {
	users := auth.DemoUsers()
	require.Len(t, users, 3)

	personas := make([]auth.Persona, 0, len(users))
	for _, u := range users {
		personas = append(personas, u.Persona)
	}
	assert.ElementsMatch(t, []auth.Persona{auth.PersonaEnv, auth.PersonaElected, auth.PersonaCitizen}, personas)
}

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		req    auth.LoginRequest
		fields []string
	}{
		{"valid", auth.LoginRequest{Email: "citoyen@smartcity.demo", Password: "demo"}, nil},
		{"missing both", auth.LoginRequest{}, []string{"email", "password"}},
		{"bad email", auth.LoginRequest{Email: "citoyen", Password: "demo"}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestLoginRequest_Normalize(t *testing.T) {
	req := auth.LoginRequest{Email: "  Marie.Env@SmartCity.Demo "}
	req.Normalize()
	assert.Equal(t, "marie.env@smartcity.demo", req.Email)
}
