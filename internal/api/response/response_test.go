package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/api/middleware"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
)

// withRequestID runs the request through the RequestID middleware so the
// handler sees a request ID in its context.
func withRequestID(t *testing.T, req *http.Request, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set(middleware.RequestIDHeader, "req_test")
	rec := httptest.NewRecorder()
	middleware.RequestID(h).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/zones", http.NoBody)
	rec := withRequestID(t, req, func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, r, map[string]string{"zone": "centre"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_test", rec.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `{"zone":"centre"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/alerts/a/read", http.NoBody)
	rec := withRequestID(t, req, func(w http.ResponseWriter, r *http.Request) {
		response.NoContent(w, r)
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		uri    string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			response.BadRequest(w, r, "invalid", []models.FieldError{{Field: "zone", Message: "unknown"}})
		}, http.StatusBadRequest, models.ProblemTypeValidation},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			response.Unauthorized(w, r, "Invalid credentials")
		}, http.StatusUnauthorized, models.ProblemTypeUnauthorized},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			response.NotFound(w, r, "alert not found")
		}, http.StatusNotFound, models.ProblemTypeNotFound},
		{"internal", func(w http.ResponseWriter, r *http.Request) {
			response.InternalError(w, r, "boom")
		}, http.StatusInternalServerError, models.ProblemTypeInternal},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) {
			response.ServiceUnavailable(w, r, "database down")
		}, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/x", http.NoBody)
			rec := withRequestID(t, req, tt.write)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var p models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.uri, p.Type)
			assert.Equal(t, "/v1/x", p.Instance)
			assert.Equal(t, "req_test", p.TraceID)
		})
	}
}

func TestDecode(t *testing.T) {
	type body struct {
		Zone string `json:"zone"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"valid", `{"zone":"centre"}`, ""},
		{"empty", ``, "request body is empty"},
		{"malformed", `{"zone":`, "invalid JSON body"},
		{"unknown field ignored", `{"zone":"centre","extra":1}`, ""},
		{"trailing data", `{"zone":"centre"}{"zone":"nord"}`, "unexpected trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/iot/ingest", strings.NewReader(tt.payload))
			var dst body
			err := response.Decode(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "centre", dst.Zone)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
