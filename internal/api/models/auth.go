package models

import "github.com/smartcity/smartcity/internal/auth"

// MeResponse is the caller's identity as carried by the token.
type MeResponse struct {
	User      *auth.User `json:"user"`
	ExpiresAt Timestamp  `json:"expiresAt"`
}
