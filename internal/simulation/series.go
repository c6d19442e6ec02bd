package simulation

import (
	"math"

	"github.com/smartcity/smartcity/internal/airquality"
)

// SeriesPoint is one value on a time axis.
type SeriesPoint struct {
	T     string `json:"t"`
	Value int    `json:"value"`
}

// MultiPoint carries the four charted pollutants at one axis label.
type MultiPoint struct {
	T    string `json:"t"`
	PM25 int    `json:"PM25"`
	PM10 int    `json:"PM10"`
	NO2  int    `json:"NO2"`
	O3   int    `json:"O3"`
}

func (m *MultiPoint) set(p airquality.Pollutant, v int) {
	switch p {
	case airquality.PollutantPM25:
		m.PM25 = v
	case airquality.PollutantPM10:
		m.PM10 = v
	case airquality.PollutantNO2:
		m.NO2 = v
	case airquality.PollutantO3:
		m.O3 = v
	}
}

// Synthesize builds a single-pollutant series over axis, drawing one value
// from s per point.
func (p Profile) Synthesize(axis []string, pollutant airquality.Pollutant, zone airquality.Zone, s *Stream) []SeriesPoint {
	base := p.Base(pollutant) * p.Factor(zone)

	out := make([]SeriesPoint, len(axis))
	for i, label := range axis {
		x := float64(i)
		wave := 6*math.Sin(x/2.2) + 3*math.Cos(x/5.5)
		noise := (s.Float64() - 0.5) * 5
		out[i] = SeriesPoint{T: label, Value: p.Series.RoundClamp(base + wave + noise)}
	}
	return out
}

// SynthesizeMulti builds the multi-pollutant series over axis, drawing one
// value per pollutant per point in MultiOrder.
func (p Profile) SynthesizeMulti(axis []string, zone airquality.Zone, s *Stream) []MultiPoint {
	zf := p.Factor(zone)

	out := make([]MultiPoint, len(axis))
	for i, label := range axis {
		x := float64(i)
		point := MultiPoint{T: label}
		for _, pollutant := range p.MultiOrder {
			amp := p.Amplitude[pollutant]
			wave := math.Sin(x/(2.3+amp))*(5+amp) + math.Cos(x/(6.5-amp/5))*2
			noise := (s.Float64() - 0.5) * (3 + amp/3)
			point.set(pollutant, p.Multi.RoundClamp(p.Base(pollutant)*zf+wave+noise))
		}
		out[i] = point
	}
	return out
}
