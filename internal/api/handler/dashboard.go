package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
	"github.com/smartcity/smartcity/internal/dashboard"
	"github.com/smartcity/smartcity/internal/simulation"
	"github.com/smartcity/smartcity/internal/telemetry"
)

// AlertMarker flags alerts as read.
type AlertMarker interface {
	MarkRead(ctx context.Context, id string) error
}

// DashboardHandler serves the dashboard, snapshot and alert endpoints.
type DashboardHandler struct {
	svc         *dashboard.Service
	alerts      AlertMarker
	instruments *telemetry.Instruments
	logger      zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler. instruments may be nil.
func NewDashboardHandler(svc *dashboard.Service, alerts AlertMarker, instruments *telemetry.Instruments, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:         svc,
		alerts:      alerts,
		instruments: instruments,
		logger:      logger,
	}
}

// Dashboard handles GET /v1/dashboard?period&zone&pollutant.
// Unknown query values fall back to their defaults.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := simulation.NewFilter(q.Get("period"), q.Get("zone"), q.Get("pollutant"))
	d := h.svc.Dashboard(r.Context(), f)
	h.instruments.DashboardServed(r.Context(), string(d.Source))
	response.OK(w, r, d)
}

// Snapshot handles GET /v1/snapshot.
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.NewSnapshot(h.svc.Snapshot(r.Context())))
}

// ListAlerts handles GET /v1/alerts.
func (h *DashboardHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, demo := h.svc.Alerts(r.Context())
	response.OK(w, r, models.AlertsResponse{
		Alerts: models.NewAlerts(alerts),
		Demo:   demo,
	})
}

// MarkAlertRead handles POST /v1/alerts/{alertId}/read.
func (h *DashboardHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "alertId"))
	if id == "" {
		response.BadRequest(w, r, "alertId is required", nil)
		return
	}

	if err := h.alerts.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		h.logger.Error().Err(err).Str("alert_id", id).Msg("failed to mark alert read")
		response.InternalError(w, r, "failed to mark alert read")
		return
	}

	response.NoContent(w, r)
}
