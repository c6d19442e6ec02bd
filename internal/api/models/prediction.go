package models

import (
	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/simulation"
)

// Prediction bounds.
const (
	DefaultPredictionHours = 24
	MaxPredictionHours     = 72
	MaxPredictionBase      = 1000
)

// PredictionResponse is the PM2.5 forecast body.
type PredictionResponse struct {
	Zone   airquality.Zone            `json:"zone"`
	Hours  int                        `json:"hours"`
	Base   float64                    `json:"base"`
	Points []simulation.ForecastPoint `json:"points"`
}
