package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartcity/smartcity/internal/api/middleware"
)

func TestRateLimitByIP(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 3, WindowLength: time.Minute}
	handler := middleware.RateLimitByIP(cfg)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1:12345").Code, "request %d", i+1)
	}

	rec := send("10.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:12345").Code)
}

func TestRateLimitByUser(t *testing.T) {
	svc := testJWTService(nil)
	token := testToken(t, svc)
	cfg := middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute}

	handler := middleware.Auth(svc)(middleware.RateLimitByUser(cfg)(okHandler()))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/alerts/a/read", http.NoBody)
		req.RemoteAddr = ip
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Same user from different addresses shares one budget.
	assert.Equal(t, http.StatusOK, send("10.1.0.1:1"))
	assert.Equal(t, http.StatusOK, send("10.1.0.2:1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.1.0.3:1"))
}

func TestDefaultRateLimits(t *testing.T) {
	assert.Equal(t, 10, middleware.AuthRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.IngestRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)
}
