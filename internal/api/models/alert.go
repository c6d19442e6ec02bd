package models

import "github.com/smartcity/smartcity/internal/alert"

// Alert is an alert card.
type Alert struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Zone      string  `json:"zone"`
	Time      string  `json:"time"`
	People    int     `json:"people"`
	Pollutant string  `json:"pollutant"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Threshold float64 `json:"threshold"`
	Critical  bool    `json:"critical"`
	Read      bool    `json:"read"`
}

// NewAlert converts a domain alert to its card.
func NewAlert(a *alert.Alert) Alert {
	return Alert{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Zone:      a.Zone,
		Time:      a.Clock(),
		People:    a.PeopleAffected,
		Pollutant: a.Pollutant,
		Value:     a.Value,
		Unit:      a.Unit,
		Threshold: a.Threshold,
		Critical:  a.Critical,
		Read:      a.Read,
	}
}

// NewAlerts converts a list of domain alerts, never returning nil.
func NewAlerts(alerts []alert.Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for i := range alerts {
		out = append(out, NewAlert(&alerts[i]))
	}
	return out
}

// AlertsResponse is the alert list body. Demo is set when no alerts are
// stored and generated ones are shown instead.
type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
	Demo   bool    `json:"demo"`
}
