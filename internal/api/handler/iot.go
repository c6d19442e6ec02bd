package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
	"github.com/smartcity/smartcity/internal/iot"
	"github.com/smartcity/smartcity/internal/telemetry"
)

// IoTService accepts sensor pushes and reports the latest one per zone.
type IoTService interface {
	Ingest(ctx context.Context, p *iot.Payload) (*iot.IngestResult, error)
	Latest(ctx context.Context) ([]iot.Latest, error)
}

// IoTHandler handles IoT ingestion endpoints.
type IoTHandler struct {
	svc         IoTService
	instruments *telemetry.Instruments
	logger      zerolog.Logger
}

// NewIoTHandler creates a new IoTHandler. instruments may be nil.
func NewIoTHandler(svc IoTService, instruments *telemetry.Instruments, logger zerolog.Logger) *IoTHandler {
	return &IoTHandler{svc: svc, instruments: instruments, logger: logger}
}

// Ingest handles POST /v1/iot/ingest.
func (h *IoTHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var p iot.Payload
	if err := response.Decode(w, r, &p); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	result, err := h.svc.Ingest(r.Context(), &p)
	if err != nil {
		switch {
		case errors.Is(err, iot.ErrInvalidZone):
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "zone", Message: err.Error(), Code: "INVALID_VALUE"},
			})
		case errors.Is(err, iot.ErrInvalidKPI):
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "kpis", Message: err.Error(), Code: "OUT_OF_RANGE"},
			})
		default:
			h.logger.Error().Err(err).Str("zone", p.Zone).Msg("iot ingest failed")
			response.InternalError(w, r, "failed to store measurement")
		}
		return
	}

	h.instruments.Ingested(r.Context(), p.Zone, result.AlertsStored)
	response.Created(w, r, models.IngestResponse{
		Status:       "ok",
		ReadingID:    result.ReadingID,
		AlertsStored: result.AlertsStored,
	})
}

// Latest handles GET /v1/iot/latest.
func (h *IoTHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.Latest(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load latest iot readings")
		response.ServiceUnavailable(w, r, "latest readings unavailable")
		return
	}
	if latest == nil {
		latest = []iot.Latest{}
	}
	response.OK(w, r, models.LatestResponse{Items: latest})
}
