package simulation

import (
	"math"

	"github.com/smartcity/smartcity/internal/airquality"
)

// Bounds is an inclusive clamp range.
type Bounds struct {
	Min float64
	Max float64
}

// Clamp limits v to the range.
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// RoundClamp rounds v to the nearest integer, half to even, then clamps it.
func (b Bounds) RoundClamp(v float64) int {
	return int(b.Clamp(math.RoundToEven(v)))
}

// KPIRule describes how a pollutant KPI card is derived.
// With Spread zero the value is the last series value scaled by Factor and
// truncated. Otherwise it is drawn around the zone-adjusted base and capped at Cap.
type KPIRule struct {
	Key    airquality.Pollutant
	Title  string
	Factor float64
	Spread float64
	Cap    float64
}

// Profile holds the lookup tables and bounds of one generator variant.
type Profile struct {
	Name string

	PollutantBase map[airquality.Pollutant]float64
	DefaultBase   float64
	ZoneFactor    map[airquality.Zone]float64

	// Amplitude shapes each pollutant's curve in the multi-series chart.
	Amplitude map[airquality.Pollutant]float64

	// MultiOrder is the order in which pollutants draw noise at each axis index.
	MultiOrder []airquality.Pollutant

	Series Bounds
	Multi  Bounds
	AQI    Bounds

	// DeltaUpper caps the synthetic previous value used for deltas.
	DeltaUpper float64

	KPIs     []KPIRule
	AQITitle string

	// RoundBars rounds bar-by-zone values instead of truncating them.
	RoundBars bool

	// SharedStream draws every value from the series stream instead of
	// seeding a second stream for the multi-series and derived values.
	SharedStream bool
}

// Base returns the pollutant's base concentration.
func (p Profile) Base(pollutant airquality.Pollutant) float64 {
	if v, ok := p.PollutantBase[pollutant]; ok {
		return v
	}
	return p.DefaultBase
}

// Factor returns the zone multiplier. The "all" aggregate and unknown zones use 1.0.
func (p Profile) Factor(zone airquality.Zone) float64 {
	if v, ok := p.ZoneFactor[zone]; ok {
		return v
	}
	return 1.0
}

var defaultZoneFactor = map[airquality.Zone]float64{
	airquality.ZoneIndustrie: 1.18,
	airquality.ZoneCentre:    1.0,
	airquality.ZoneNord:      0.85,
}

var defaultAmplitude = map[airquality.Pollutant]float64{
	airquality.PollutantPM25: 2.0,
	airquality.PollutantPM10: 3.0,
	airquality.PollutantNO2:  2.5,
	airquality.PollutantO3:   2.0,
}

// DashboardProfile drives the dashboard endpoint.
func DashboardProfile() Profile {
	return Profile{
		Name: "dashboard",
		PollutantBase: map[airquality.Pollutant]float64{
			airquality.PollutantPM25: 38,
			airquality.PollutantPM10: 58,
			airquality.PollutantNO2:  50,
			airquality.PollutantO3:   42,
		},
		DefaultBase: 35,
		ZoneFactor:  defaultZoneFactor,
		Amplitude:   defaultAmplitude,
		MultiOrder: []airquality.Pollutant{
			airquality.PollutantPM25,
			airquality.PollutantPM10,
			airquality.PollutantNO2,
			airquality.PollutantO3,
		},
		Series:     Bounds{Min: 5, Max: 140},
		Multi:      Bounds{Min: 4, Max: 160},
		AQI:        Bounds{Min: 10, Max: 180},
		DeltaUpper: 160,
		KPIs: []KPIRule{
			{Key: airquality.PollutantPM25, Title: "PM2.5 Moyen", Factor: 1},
			{Key: airquality.PollutantPM10, Title: "PM10 Moyen", Factor: 1.5},
			{Key: airquality.PollutantNO2, Title: "NO2 Moyen", Factor: 1.3},
		},
		AQITitle: "AQI Global",
	}
}

// AnalyticsProfile drives the analytics variant, which knows SO2, allows
// higher multi-series values and draws its KPI cards independently.
func AnalyticsProfile() Profile {
	return Profile{
		Name: "analytics",
		PollutantBase: map[airquality.Pollutant]float64{
			airquality.PollutantPM25: 38,
			airquality.PollutantPM10: 58,
			airquality.PollutantNO2:  50,
			airquality.PollutantO3:   42,
			airquality.PollutantSO2:  30,
		},
		DefaultBase: 35,
		ZoneFactor:  defaultZoneFactor,
		Amplitude:   defaultAmplitude,
		MultiOrder: []airquality.Pollutant{
			airquality.PollutantNO2,
			airquality.PollutantO3,
			airquality.PollutantPM10,
			airquality.PollutantPM25,
		},
		Series:     Bounds{Min: 5, Max: 140},
		Multi:      Bounds{Min: 4, Max: 200},
		AQI:        Bounds{Min: 10, Max: 200},
		DeltaUpper: 200,
		KPIs: []KPIRule{
			{Key: airquality.PollutantPM25, Title: "PM25", Spread: 8, Cap: 120},
			{Key: airquality.PollutantPM10, Title: "PM10", Spread: 10, Cap: 160},
			{Key: airquality.PollutantNO2, Title: "NO2", Spread: 10, Cap: 220},
		},
		AQITitle:     "AQI",
		RoundBars:    true,
		SharedStream: true,
	}
}

// ProfileByName returns the named profile, falling back to the dashboard profile.
func ProfileByName(name string) Profile {
	if name == "analytics" {
		return AnalyticsProfile()
	}
	return DashboardProfile()
}
