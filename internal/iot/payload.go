// Package iot ingests sensor measurements, keeps the latest one per zone and
// drives the sensor simulator.
package iot

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/simulation"
)

// Payload errors.
var (
	ErrInvalidZone = errors.New("unknown sensor zone")
	ErrInvalidKPI  = errors.New("invalid kpi value")
)

// Sensors reports how many sensors of a zone are reachable.
type Sensors struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

// KPIs are the measured values of one push. Wind is in km/h.
type KPIs struct {
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	NO2         float64 `json:"no2"`
	O3          float64 `json:"o3"`
	AQI         int     `json:"aqi"`
	Temperature float64 `json:"temperature"`
	Wind        float64 `json:"wind"`
	Humidity    float64 `json:"humidity"`
	Sensors     Sensors `json:"sensors"`
}

// AlertPayload is an alert as pushed by a sensor gateway.
type AlertPayload struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Zone      string  `json:"zone"`
	Time      string  `json:"time,omitempty"`
	Pollutant string  `json:"pollutant"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Threshold float64 `json:"threshold"`
	Critical  bool    `json:"critical"`
	Read      bool    `json:"read"`
}

// Payload is one measurement push for a zone.
type Payload struct {
	Zone   string         `json:"zone"`
	KPIs   KPIs           `json:"kpis"`
	Alerts []AlertPayload `json:"alerts"`
}

// Validate checks the zone and value ranges.
func (p *Payload) Validate() error {
	zone := airquality.ParseZone(p.Zone)
	if zone == airquality.ZoneAll || string(zone) != p.Zone {
		return fmt.Errorf("%w: %q", ErrInvalidZone, p.Zone)
	}

	for name, v := range map[string]float64{
		"pm25": p.KPIs.PM25,
		"pm10": p.KPIs.PM10,
		"no2":  p.KPIs.NO2,
		"o3":   p.KPIs.O3,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidKPI, name)
		}
	}
	if p.KPIs.Humidity < 0 || p.KPIs.Humidity > 100 {
		return fmt.Errorf("%w: humidity out of range", ErrInvalidKPI)
	}
	return nil
}

// Reading converts the push into a stored reading.
func (p *Payload) Reading(city string, at time.Time) *airquality.Reading {
	aqi := p.KPIs.AQI
	return &airquality.Reading{
		RecordedAt:  at,
		City:        city,
		Zone:        airquality.Zone(p.Zone),
		AQI:         &aqi,
		PM25:        airquality.Float(p.KPIs.PM25),
		PM10:        airquality.Float(p.KPIs.PM10),
		NO2:         airquality.Float(p.KPIs.NO2),
		O3:          airquality.Float(p.KPIs.O3),
		Temperature: airquality.Float(p.KPIs.Temperature),
		Humidity:    airquality.Float(p.KPIs.Humidity),
		WindSpeed:   airquality.Float(p.KPIs.Wind / 3.6),
		Source:      airquality.SourceIoT,
	}
}

// DomainAlerts converts pushed alerts, filling the zone from the payload.
func (p *Payload) DomainAlerts(at time.Time) []alert.Alert {
	out := make([]alert.Alert, 0, len(p.Alerts))
	for _, a := range p.Alerts {
		zone := a.Zone
		if zone == "" {
			zone = p.Zone
		}
		out = append(out, alert.Alert{
			ID:        a.ID,
			Title:     a.Title,
			Message:   a.Message,
			Zone:      zone,
			Pollutant: a.Pollutant,
			Value:     a.Value,
			Unit:      a.Unit,
			Threshold: a.Threshold,
			Critical:  a.Critical,
			Read:      a.Read,
			CreatedAt: at,
		})
	}
	return out
}

// PayloadFromTick builds the push a simulated sensor sends at tick t.
func PayloadFromTick(zone airquality.Zone, t int, at time.Time) Payload {
	r := simulation.Tick(zone, t)

	p := Payload{
		Zone: string(zone),
		KPIs: KPIs{
			PM25:        float64(r.PM25),
			PM10:        float64(r.PM10),
			NO2:         float64(r.NO2),
			O3:          float64(r.O3),
			AQI:         r.AQI,
			Temperature: float64(r.Temperature),
			Wind:        float64(r.Wind),
			Humidity:    float64(r.Humidity),
			Sensors:     Sensors{Active: 3, Total: 3},
		},
		Alerts: []AlertPayload{},
	}

	for _, a := range simulation.TickAlerts(r, t, at) {
		p.Alerts = append(p.Alerts, AlertPayload{
			ID:        a.ID,
			Title:     a.Title,
			Message:   a.Message,
			Zone:      a.Zone,
			Time:      a.Clock(),
			Pollutant: a.Pollutant,
			Value:     a.Value,
			Unit:      a.Unit,
			Threshold: a.Threshold,
			Critical:  a.Critical,
			Read:      a.Read,
		})
	}
	return p
}
