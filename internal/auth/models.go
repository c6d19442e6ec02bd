// Package auth provides demo login and token validation for the dashboard.
package auth

import (
	"net/mail"
	"strings"
)

// Persona selects which dashboard view a user lands on.
type Persona string

const (
	PersonaEnv     Persona = "env"
	PersonaElected Persona = "elected"
	PersonaCitizen Persona = "citizen"
)

// User represents an authenticated dashboard user.
type User struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Persona Persona `json:"persona"`
	Role    string  `json:"role"`
}

// LoginRequest represents the request body for email and password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lowercases the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate validates the login request.
func (r *LoginRequest) Validate() []FieldError {
	var errors []FieldError

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errors = append(errors, FieldError{
			Field:   "email",
			Message: "email is required",
			Code:    "REQUIRED",
		})
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			errors = append(errors, FieldError{
				Field:   "email",
				Message: "email is not a valid address",
				Code:    "INVALID_FORMAT",
			})
		}
	}

	if r.Password == "" {
		errors = append(errors, FieldError{
			Field:   "password",
			Message: "password is required",
			Code:    "REQUIRED",
		})
	}

	return errors
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// TokenResponse represents the response after successful login.
type TokenResponse struct {
	// Token is the JWT access token for API authentication.
	Token string `json:"token"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the token expires.
	ExpiresIn int64 `json:"expiresIn"`

	User *User `json:"user"`
}
