package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
	"github.com/smartcity/smartcity/internal/simulation"
)

// AnalyticsHandler serves the PM2.5 forecast and the mobility index.
type AnalyticsHandler struct {
	now func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler. A nil clock uses time.Now.
func NewAnalyticsHandler(now func() time.Time) *AnalyticsHandler {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsHandler{now: now}
}

// PredictPM25 handles GET /v1/predictions/pm25?zone&hours&base.
func (h *AnalyticsHandler) PredictPM25(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var fieldErrors []models.FieldError

	hours := models.DefaultPredictionHours
	if v := q.Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > models.MaxPredictionHours {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "hours",
				Message: "hours must be an integer between 1 and 72",
				Code:    "OUT_OF_RANGE",
			})
		}
		hours = n
	}

	base := float64(simulation.DefaultForecastBase)
	if v := q.Get("base"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		// ParseFloat accepts NaN and Inf; the range check rejects Inf.
		if err != nil || math.IsNaN(f) || f < 0 || f > models.MaxPredictionBase {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "base",
				Message: "base must be a number between 0 and 1000",
				Code:    "INVALID_VALUE",
			})
		}
		base = f
	}

	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	zone := airquality.ParseZone(q.Get("zone"))
	response.OK(w, r, models.PredictionResponse{
		Zone:   zone,
		Hours:  hours,
		Base:   base,
		Points: simulation.ForecastPM25(base, hours, zone, h.now()),
	})
}

// Mobility handles GET /v1/mobility?zone.
func (h *AnalyticsHandler) Mobility(w http.ResponseWriter, r *http.Request) {
	zone := airquality.ParseZone(r.URL.Query().Get("zone"))
	response.OK(w, r, simulation.MobilityIndex(zone, h.now()))
}
