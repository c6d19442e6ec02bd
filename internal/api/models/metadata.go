package models

import "github.com/smartcity/smartcity/internal/airquality"

// ZonesResponse lists the selectable zones.
type ZonesResponse struct {
	Items []airquality.ZoneInfo `json:"items"`
}

// PollutantInfo describes a selectable pollutant.
type PollutantInfo struct {
	ID    airquality.Pollutant `json:"id"`
	Label string               `json:"label"`
	Unit  string               `json:"unit"`
}

// PollutantsResponse lists the selectable pollutants.
type PollutantsResponse struct {
	Items []PollutantInfo `json:"items"`
}

// NewPollutantsResponse lists every supported pollutant in display order.
func NewPollutantsResponse() PollutantsResponse {
	items := make([]PollutantInfo, 0, len(airquality.Pollutants))
	for _, p := range airquality.Pollutants {
		items = append(items, PollutantInfo{ID: p, Label: p.Label(), Unit: "µg/m³"})
	}
	return PollutantsResponse{Items: items}
}
