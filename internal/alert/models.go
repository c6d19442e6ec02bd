// Package alert models pollution alerts, the policies that raise them and their storage.
package alert

import (
	"errors"
	"time"
)

// Alert errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Pollutant labels used on alerts. Live collection alerts on the composite index.
const (
	PollutantPM25 = "PM25"
	PollutantPM10 = "PM10"
	PollutantAQI  = "AQI"
)

// UnitMicrograms is the concentration unit of particulate alerts.
const UnitMicrograms = "µg/m³"

// Alert is a threshold breach for a pollutant in a zone.
type Alert struct {
	ID             string
	Title          string
	Message        string
	Zone           string
	Pollutant      string
	Value          float64
	Unit           string
	Threshold      float64
	Critical       bool
	Read           bool
	PeopleAffected int
	CreatedAt      time.Time
}

// Clock returns the alert's creation time as HH:MM:SS.
func (a *Alert) Clock() string {
	return a.CreatedAt.Format("15:04:05")
}
