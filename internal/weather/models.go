// Package weather holds weather and air pollution observations from OpenWeather.
package weather

import (
	"errors"
	"math"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrLocationNotFound    = errors.New("location not found")
	ErrNoPollutionData     = errors.New("no air pollution data for location")
)

// Location is a geocoded place.
type Location struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// Observation represents weather data at a specific point and time.
type Observation struct {
	Lat float64
	Lon float64

	// Temperature in Celsius
	Temperature float64

	// Humidity percentage (0-100)
	Humidity float64

	WindSpeed     float64 // m/s
	WindDirection float64 // degrees

	Pressure float64 // hPa

	Condition   Condition
	Description string

	ObservedAt time.Time
	FetchedAt  time.Time
}

// WindKmh returns the wind speed in km/h, rounded to the nearest integer.
func (o *Observation) WindKmh() int {
	return KmhFromMetersPerSecond(o.WindSpeed)
}

// KmhFromMetersPerSecond converts m/s to whole km/h.
func KmhFromMetersPerSecond(ms float64) int {
	return int(math.Round(ms * 3.6))
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// AirPollution is one OpenWeather air pollution sample.
// Concentrations are in µg/m³.
type AirPollution struct {
	// Index is OpenWeather's 1 (good) to 5 (very poor) scale.
	Index int

	PM25 float64
	PM10 float64
	NO2  float64
	O3   float64
	SO2  float64
	CO   float64

	MeasuredAt time.Time
}

// ScaledAQI maps the 1-5 index onto an approximate AQI by multiplying by 50.
func (a *AirPollution) ScaledAQI() int {
	return a.Index * 50
}
