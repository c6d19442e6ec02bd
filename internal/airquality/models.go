// Package airquality provides air quality readings, zones and their storage.
package airquality

import (
	"errors"
	"strings"
	"time"
)

// Provider and repository errors.
var (
	ErrNoReadings          = errors.New("no readings available")
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrCityNotFound        = errors.New("city not found")
)

// Pollutant represents an air quality pollutant type.
type Pollutant string

const (
	PollutantPM25 Pollutant = "PM25"
	PollutantPM10 Pollutant = "PM10"
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantSO2  Pollutant = "SO2"
)

// Pollutants lists every supported pollutant in display order.
var Pollutants = []Pollutant{PollutantPM25, PollutantPM10, PollutantNO2, PollutantO3, PollutantSO2}

// ParsePollutant maps a query value to a pollutant, falling back to PM2.5.
// It accepts the dotted form "PM2.5" as well.
func ParsePollutant(s string) Pollutant {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), ".", "")) {
	case "PM25":
		return PollutantPM25
	case "PM10":
		return PollutantPM10
	case "NO2":
		return PollutantNO2
	case "O3":
		return PollutantO3
	case "SO2":
		return PollutantSO2
	default:
		return PollutantPM25
	}
}

// Label returns the human readable pollutant name.
func (p Pollutant) Label() string {
	switch p {
	case PollutantPM25:
		return "PM2.5"
	case PollutantNO2:
		return "NO₂"
	case PollutantO3:
		return "O₃"
	case PollutantSO2:
		return "SO₂"
	default:
		return string(p)
	}
}

// Zone identifies a sub-area of the city.
type Zone string

const (
	ZoneAll       Zone = "all"
	ZoneCentre    Zone = "centre"
	ZoneIndustrie Zone = "industrie"
	ZoneNord      Zone = "nord"
)

// ZoneInfo describes a zone for display and geocoding.
type ZoneInfo struct {
	ID    Zone    `json:"id"`
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

var zones = []ZoneInfo{
	{ID: ZoneAll, Label: "Toutes", Lat: 43.2965, Lon: 5.3698},
	{ID: ZoneCentre, Label: "Centre-ville", Lat: 43.2965, Lon: 5.3698},
	{ID: ZoneIndustrie, Label: "Zone Industrielle", Lat: 43.33, Lon: 5.38},
	{ID: ZoneNord, Label: "Résidentiel Nord", Lat: 43.34, Lon: 5.40},
}

// Zones returns all zones including the "all" aggregate.
func Zones() []ZoneInfo {
	out := make([]ZoneInfo, len(zones))
	copy(out, zones)
	return out
}

// SensorZones are the zones that carry physical (or simulated) sensors.
var SensorZones = []Zone{ZoneCentre, ZoneIndustrie, ZoneNord}

// ParseZone maps a query value to a zone, falling back to the "all" aggregate.
func ParseZone(s string) Zone {
	switch Zone(strings.ToLower(strings.TrimSpace(s))) {
	case ZoneCentre:
		return ZoneCentre
	case ZoneIndustrie:
		return ZoneIndustrie
	case ZoneNord:
		return ZoneNord
	default:
		return ZoneAll
	}
}

// Info returns the zone's display information. Unknown zones resolve to the centre.
func (z Zone) Info() ZoneInfo {
	for _, info := range zones {
		if info.ID == z {
			return info
		}
	}
	return zones[1]
}

// Source identifies where a reading came from.
type Source string

const (
	SourceAQICN       Source = "AQICN"
	SourceOpenWeather Source = "OpenWeather"
	SourceIoT         Source = "IOT"
	SourceSimulated   Source = "SIMULATED"
)

// Reading is a single air quality and weather observation.
// Pointer fields are nil when the source did not report the value.
type Reading struct {
	ID          int64
	RecordedAt  time.Time
	City        string
	Zone        Zone
	AQI         *int
	PM25        *float64
	PM10        *float64
	NO2         *float64
	O3          *float64
	SO2         *float64
	CO          *float64
	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64
	Source      Source
}

// Value returns the reading's concentration for the pollutant.
func (r *Reading) Value(p Pollutant) *float64 {
	switch p {
	case PollutantPM25:
		return r.PM25
	case PollutantPM10:
		return r.PM10
	case PollutantNO2:
		return r.NO2
	case PollutantO3:
		return r.O3
	case PollutantSO2:
		return r.SO2
	default:
		return nil
	}
}

// CollectionStatus is the outcome of one provider collection attempt.
type CollectionStatus string

const (
	CollectionSuccess CollectionStatus = "SUCCESS"
	CollectionError   CollectionStatus = "ERROR"
)

// CollectionLog records one provider collection attempt.
type CollectionLog struct {
	ID               int64
	CreatedAt        time.Time
	Source           Source
	Status           CollectionStatus
	RecordsCollected int
	ErrorMessage     string
}

// HistoryPoint is a stored value projected onto a clock label.
type HistoryPoint struct {
	RecordedAt time.Time
	Value      float64
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
