package alert

import (
	"fmt"
	"strings"
	"time"
)

// Sample is the input to a policy evaluation.
type Sample struct {
	// Zone or city the values belong to.
	Zone string

	// PM25 and PM10 are concentrations in µg/m³.
	PM25 float64
	PM10 float64

	// AQI is the composite air quality index.
	AQI int

	// Ref distinguishes alerts raised for the same zone, e.g. a tick counter.
	Ref string

	At time.Time
}

// Policy turns a sample into zero or more alerts.
type Policy interface {
	Name() string
	Evaluate(s Sample) []Alert
}

// SimulatorPolicy raises particulate alerts for simulated sensors.
// Every breach is critical; there is no secondary threshold.
type SimulatorPolicy struct {
	PM25Threshold float64
	PM10Threshold float64
}

// DefaultSimulatorPolicy uses 50 µg/m³ for PM2.5 and 80 µg/m³ for PM10.
func DefaultSimulatorPolicy() SimulatorPolicy {
	return SimulatorPolicy{PM25Threshold: 50, PM10Threshold: 80}
}

// Name identifies the policy.
func (SimulatorPolicy) Name() string { return "simulator" }

// Evaluate emits one alert per pollutant strictly above its threshold.
func (p SimulatorPolicy) Evaluate(s Sample) []Alert {
	var alerts []Alert
	if s.PM25 > p.PM25Threshold {
		alerts = append(alerts, p.particulate(s, PollutantPM25, "PM2.5", s.PM25, p.PM25Threshold))
	}
	if s.PM10 > p.PM10Threshold {
		alerts = append(alerts, p.particulate(s, PollutantPM10, "PM10", s.PM10, p.PM10Threshold))
	}
	return alerts
}

func (SimulatorPolicy) particulate(s Sample, pollutant, label string, value, threshold float64) Alert {
	return Alert{
		ID:        fmt.Sprintf("iot-%s-%s-%s", strings.ToLower(pollutant), s.Zone, s.Ref),
		Title:     "Alerte " + label,
		Message:   fmt.Sprintf("Niveau %s élevé : %g %s (seuil : %g %s).", label, value, UnitMicrograms, threshold, UnitMicrograms),
		Zone:      s.Zone,
		Pollutant: pollutant,
		Value:     value,
		Unit:      UnitMicrograms,
		Threshold: threshold,
		Critical:  true,
		CreatedAt: s.At,
	}
}

// LivePolicy raises index alerts for readings collected from upstream providers.
// An alert is raised above Threshold and is critical only above CriticalAbove.
type LivePolicy struct {
	Threshold      int
	CriticalAbove  int
	PeopleAffected int
}

// DefaultLivePolicy alerts above AQI 100 and marks alerts critical above 150.
func DefaultLivePolicy() LivePolicy {
	return LivePolicy{Threshold: 100, CriticalAbove: 150, PeopleAffected: 50000}
}

// Name identifies the policy.
func (LivePolicy) Name() string { return "live" }

// Evaluate emits a single index alert when the AQI exceeds the threshold.
func (p LivePolicy) Evaluate(s Sample) []Alert {
	if s.AQI <= p.Threshold {
		return nil
	}
	return []Alert{{
		Title:          "Alerte Qualité de l'Air - " + s.Zone,
		Message:        fmt.Sprintf("AQI élevé: %d (seuil: %d)", s.AQI, p.Threshold),
		Zone:           s.Zone,
		Pollutant:      PollutantAQI,
		Value:          float64(s.AQI),
		Threshold:      float64(p.Threshold),
		Critical:       s.AQI > p.CriticalAbove,
		PeopleAffected: p.PeopleAffected,
		CreatedAt:      s.At,
	}}
}

var (
	_ Policy = SimulatorPolicy{}
	_ Policy = LivePolicy{}
)
