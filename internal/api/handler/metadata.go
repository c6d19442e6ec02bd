package handler

import (
	"net/http"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/api/models"
	"github.com/smartcity/smartcity/internal/api/response"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// ListZones handles GET /v1/metadata/zones.
func (h *MetadataHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.ZonesResponse{Items: airquality.Zones()})
}

// ListPollutants handles GET /v1/metadata/pollutants.
func (h *MetadataHandler) ListPollutants(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.NewPollutantsResponse())
}
