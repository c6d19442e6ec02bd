package models

import "github.com/smartcity/smartcity/internal/iot"

// IngestResponse acknowledges an accepted IoT push.
type IngestResponse struct {
	Status       string `json:"status"`
	ReadingID    int64  `json:"readingId"`
	AlertsStored int    `json:"alertsStored"`
}

// LatestResponse lists the latest push of every zone.
type LatestResponse struct {
	Items []iot.Latest `json:"items"`
}
