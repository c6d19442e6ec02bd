package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/api/middleware"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
	"github.com/smartcity/smartcity/internal/auth"
)

// AuthHandler handles login and identity endpoints.
type AuthHandler struct {
	authService *auth.Service
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /v1/auth/login - demo email and password login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := response.Decode(w, r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", toFieldErrors(errs))
		return
	}

	tokenResp, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Info().Str("email", req.Email).Msg("login rejected")
			response.Unauthorized(w, r, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		response.InternalError(w, r, "login failed")
		return
	}

	response.OK(w, r, tokenResp)
}

// Me handles GET /v1/auth/me - the caller's identity from the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	resp := models.MeResponse{User: claims.User()}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = models.Timestamp(claims.ExpiresAt.Time)
	}
	response.OK(w, r, resp)
}

func toFieldErrors(errs []auth.FieldError) []models.FieldError {
	out := make([]models.FieldError, len(errs))
	for i, e := range errs {
		out[i] = models.FieldError{Field: e.Field, Message: e.Message, Code: e.Code}
	}
	return out
}
