package simulation

import (
	"fmt"
	"math"

	"github.com/smartcity/smartcity/internal/airquality"
)

// Tone is the severity colour of a KPI card.
type Tone string

const (
	ToneOK     Tone = "ok"
	ToneWarn   Tone = "warn"
	ToneDanger Tone = "danger"
)

// Band is an AQI category.
type Band struct {
	Label string
	Tone  Tone
}

// AQIBand classifies an index value.
func AQIBand(aqi int) Band {
	switch {
	case aqi <= 50:
		return Band{Label: "Good", Tone: ToneOK}
	case aqi <= 100:
		return Band{Label: "Moderate", Tone: ToneWarn}
	case aqi <= 150:
		return Band{Label: "Poor", Tone: ToneDanger}
	default:
		return Band{Label: "Very poor", Tone: ToneDanger}
	}
}

// PreviousValue draws a synthetic previous reading near last.
func PreviousValue(last int, s *Stream, upper float64) int {
	prev := float64(last) + math.RoundToEven((s.Float64()-0.5)*10)
	return int(Bounds{Min: 5, Max: upper}.Clamp(prev))
}

// DeltaPercent returns the change from prev to last in percent with one
// decimal, ties to even. A zero prev yields zero.
func DeltaPercent(last, prev int) float64 {
	if prev == 0 {
		return 0
	}
	pct := math.RoundToEven(float64(last-prev)/float64(prev)*1000) / 10
	if pct == 0 {
		return 0
	}
	return pct
}

// FormatDelta renders a delta percentage for a KPI card, e.g. "+4.2% vs précédent".
func FormatDelta(pct float64) string {
	sign := ""
	if pct >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%% vs précédent", sign, pct)
}

// AQIFrom derives an index from a PM2.5-like concentration.
func AQIFrom(v int, b Bounds) int {
	return b.RoundClamp(float64(v) * 1.7)
}

// Slice is one share of the pollutant pie chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

var pieWeights = []struct {
	pollutant airquality.Pollutant
	base      float64
	spread    float64
}{
	{airquality.PollutantPM25, 0.15, 0.2},
	{airquality.PollutantPM10, 0.2, 0.25},
	{airquality.PollutantNO2, 0.15, 0.25},
	{airquality.PollutantO3, 0.15, 0.25},
}

// Pie draws pollutant shares as integer percentages summing to exactly 100.
// The rounding residual goes to the first slice.
func Pie(s *Stream) []Slice {
	weights := make([]float64, len(pieWeights))
	var total float64
	for i, w := range pieWeights {
		weights[i] = w.base + s.Float64()*w.spread
		total += weights[i]
	}

	out := make([]Slice, len(pieWeights))
	sum := 0
	for i, w := range pieWeights {
		v := int(math.RoundToEven(weights[i] / total * 100))
		out[i] = Slice{Name: string(w.pollutant), Value: v}
		sum += v
	}
	out[0].Value += 100 - sum
	return out
}

// BarZone is the index of one zone in the bar chart.
type BarZone struct {
	Name string `json:"name"`
	AQI  int    `json:"aqi"`
}

var barSpecs = []struct {
	zone   airquality.Zone
	base   float64
	spread float64
}{
	{airquality.ZoneCentre, 70, 20},
	{airquality.ZoneIndustrie, 95, 25},
	{airquality.ZoneNord, 55, 18},
}

// BarZones draws one index per sensor zone. Values are rounded when round
// is set and truncated otherwise.
func BarZones(s *Stream, round bool) []BarZone {
	out := make([]BarZone, len(barSpecs))
	for i, b := range barSpecs {
		v := b.base + s.Float64()*b.spread
		if round {
			v = math.RoundToEven(v)
		}
		out[i] = BarZone{Name: b.zone.Info().Label, AQI: int(v)}
	}
	return out
}
