package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DemoPassword is shared by every built-in demo account.
const DemoPassword = "demo"

type account struct {
	user     User
	password string
}

var demoAccounts = []account{
	{
		user: User{
			Email:   "marie.env@smartcity.demo",
			Name:    "Marie Dubois",
			Persona: PersonaEnv,
			Role:    "Responsable Environnement",
		},
		password: DemoPassword,
	},
	{
		user: User{
			Email:   "paul.elu@smartcity.demo",
			Name:    "Paul M.",
			Persona: PersonaElected,
			Role:    "Élu",
		},
		password: DemoPassword,
	},
	{
		user: User{
			Email:   "citoyen@smartcity.demo",
			Name:    "Citoyen",
			Persona: PersonaCitizen,
			Role:    "Citoyen",
		},
		password: DemoPassword,
	},
}

// DemoUsers returns the built-in demo accounts without their passwords.
func DemoUsers() []User {
	out := make([]User, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		out = append(out, a.user)
	}
	return out
}

// Service provides authentication operations.
type Service struct {
	jwtService *JWTService
	accounts   map[string]account
}

// NewService creates a new auth service backed by the demo accounts.
func NewService(jwtService *JWTService) *Service {
	accounts := make(map[string]account, len(demoAccounts))
	for _, a := range demoAccounts {
		accounts[a.user.Email] = a
	}
	return &Service{
		jwtService: jwtService,
		accounts:   accounts,
	}
}

// Login checks the credentials and issues an access token.
// The email is matched case-insensitively.
func (s *Service) Login(email, password string) (*TokenResponse, error) {
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	user := a.user
	token, _, err := s.jwtService.GenerateAccessToken(&user)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(AccessTokenExpiry.Seconds()),
		User:      &user,
	}, nil
}

// ValidateAccessToken validates a token issued by Login.
func (s *Service) ValidateAccessToken(token string) (*JWTClaims, error) {
	return s.jwtService.ValidateAccessToken(token)
}
