// Package handler provides HTTP handlers for the smart city API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
	"github.com/smartcity/smartcity/internal/dashboard"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadingStats exposes stored reading totals and recent collection attempts.
type ReadingStats interface {
	CountReadings(ctx context.Context) (int, error)
	RecentCollectionLogs(ctx context.Context, limit int) ([]*airquality.CollectionLog, error)
}

// AlertCounter counts stored alerts.
type AlertCounter interface {
	Count(ctx context.Context) (int, error)
}

// DataSourcer names the dashboard's data source.
type DataSourcer interface {
	DataSource() dashboard.SourceName
}

// OpsConfig holds the dependencies of the ops endpoints. Nil fields are
// reported as not configured.
type OpsConfig struct {
	Version   string
	BuildTime string
	Database  Pinger
	Cache     Pinger
	Readings  ReadingStats
	Alerts    AlertCounter
	Dashboard DataSourcer
	Logger    zerolog.Logger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// collectionLogWindow is how many recent attempts feed the provider status.
const collectionLogWindow = 50

const pingTimeout = 2 * time.Second

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready - fails while the database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Database != nil {
		if err := ping(r.Context(), h.cfg.Database); err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("readiness check failed")
			response.ServiceUnavailable(w, r, "database unavailable")
			return
		}
	}
	response.OK(w, r, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status - stores, providers and row counts.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{
			storeStatus(ctx, "postgres", h.cfg.Database),
			storeStatus(ctx, "redis", h.cfg.Cache),
		},
		Providers: []models.ProviderStatus{},
	}
	if h.cfg.Dashboard != nil {
		status.DataSource = string(h.cfg.Dashboard.DataSource())
	}

	if h.cfg.Readings != nil {
		n, err := h.cfg.Readings.CountReadings(ctx)
		if err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("failed to count readings")
		}
		status.Counts.Readings = n

		logs, err := h.cfg.Readings.RecentCollectionLogs(ctx, collectionLogWindow)
		if err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("failed to load collection logs")
		}
		status.Providers = providerStatuses(logs)
	}
	if h.cfg.Alerts != nil {
		n, err := h.cfg.Alerts.Count(ctx)
		if err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("failed to count alerts")
		}
		status.Counts.Alerts = n
	}

	for _, s := range status.Subsystems {
		if s.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusDegraded
		}
	}
	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}

	response.OK(w, r, status)
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func storeStatus(ctx context.Context, name string, p Pinger) models.SubsystemStatus {
	s := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
	if p == nil {
		detail := "not configured, using in-memory storage"
		s.Detail = &detail
		return s
	}
	if err := ping(ctx, p); err != nil {
		detail := err.Error()
		s.Status = models.HealthStatusFail
		s.Detail = &detail
	}
	return s
}

// providerStatuses folds collection logs (newest first) into one status per
// source. A source is OK when its latest attempt succeeded.
func providerStatuses(logs []*airquality.CollectionLog) []models.ProviderStatus {
	bySource := make(map[airquality.Source]*models.ProviderStatus)
	var order []airquality.Source

	for _, l := range logs {
		ps, ok := bySource[l.Source]
		if !ok {
			ps = &models.ProviderStatus{Provider: string(l.Source), Status: models.HealthStatusOK}
			if l.Status != airquality.CollectionSuccess {
				ps.Status = models.HealthStatusDegraded
				if l.ErrorMessage != "" {
					msg := l.ErrorMessage
					ps.Message = &msg
				}
			}
			bySource[l.Source] = ps
			order = append(order, l.Source)
		}

		ts := models.Timestamp(l.CreatedAt)
		switch {
		case l.Status == airquality.CollectionSuccess && ps.LastSuccessAt == nil:
			ps.LastSuccessAt = &ts
		case l.Status != airquality.CollectionSuccess && ps.LastFailureAt == nil:
			ps.LastFailureAt = &ts
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]models.ProviderStatus, 0, len(order))
	for _, src := range order {
		out = append(out, *bySource[src])
	}
	return out
}
