package simulation

import (
	"fmt"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
)

// MinuteLayout formats the minute bucket that seeds per-request streams.
const MinuteLayout = "2006-01-02 15:04"

// Filter selects what a dashboard request shows.
type Filter struct {
	Period    Period
	Zone      airquality.Zone
	Pollutant airquality.Pollutant
}

// NewFilter parses raw query values. Unknown values fall back to 24h, the
// "all" aggregate and PM2.5.
func NewFilter(period, zone, pollutant string) Filter {
	return Filter{
		Period:    ParsePeriod(period),
		Zone:      airquality.ParseZone(zone),
		Pollutant: airquality.ParsePollutant(pollutant),
	}
}

// Normalize replaces unknown values with their defaults.
func (f Filter) Normalize() Filter {
	return NewFilter(string(f.Period), string(f.Zone), string(f.Pollutant))
}

// SeriesKey seeds the single-pollutant series for the minute containing now.
func (f Filter) SeriesKey(now time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", f.Period, f.Zone, f.Pollutant, now.Format(MinuteLayout))
}

// MultiKey seeds the multi-series and derived charts for the minute containing now.
func (f Filter) MultiKey(now time.Time) string {
	return fmt.Sprintf("%s|%s|%s", f.Period, f.Zone, now.Format(MinuteLayout))
}

// KPI is a dashboard headline card.
type KPI struct {
	Title string `json:"title"`
	Value int    `json:"value"`
	Unit  string `json:"unit"`
	Delta string `json:"delta"`
	Tone  Tone   `json:"tone,omitempty"`
}

// Result is the generated dashboard payload.
type Result struct {
	Series   []SeriesPoint  `json:"series"`
	Multi    []MultiPoint   `json:"multi"`
	BarZones []BarZone      `json:"barZones"`
	Pie      []Slice        `json:"pie"`
	KPIs     map[string]KPI `json:"kpis"`
}

// KPIKeyAQI is the KPI map key of the index card.
const KPIKeyAQI = "AQI"

// Generator produces dashboard payloads for one profile.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	profile Profile
}

// NewGenerator creates a generator for the profile.
func NewGenerator(p Profile) *Generator {
	return &Generator{profile: p}
}

// Profile returns the generator's profile.
func (g *Generator) Profile() Profile {
	return g.profile
}

// Series synthesizes the filter's single-pollutant series at now.
func (g *Generator) Series(f Filter, now time.Time) []SeriesPoint {
	f = f.Normalize()
	return g.profile.Synthesize(BuildAxis(f.Period, now), f.Pollutant, f.Zone, StreamFor(f.SeriesKey(now)))
}

// Generate builds the full payload from synthesized data.
func (g *Generator) Generate(f Filter, now time.Time) Result {
	return g.GenerateWith(f, now, nil)
}

// GenerateWith builds the payload around series. When series is empty the
// series is synthesized. The remaining charts are always synthesized and do
// not depend on whether series was supplied.
func (g *Generator) GenerateWith(f Filter, now time.Time, series []SeriesPoint) Result {
	f = f.Normalize()
	p := g.profile
	axis := BuildAxis(f.Period, now)

	seriesStream := StreamFor(f.SeriesKey(now))
	if len(series) == 0 {
		series = p.Synthesize(axis, f.Pollutant, f.Zone, seriesStream)
	} else if p.SharedStream {
		seriesStream.Skip(len(axis))
	}

	rest := seriesStream
	if !p.SharedStream {
		rest = StreamFor(f.MultiKey(now))
	}

	multi := p.SynthesizeMulti(axis, f.Zone, rest)
	bars := BarZones(rest, p.RoundBars)
	pie := Pie(rest)

	last := series[len(series)-1].Value
	prev := PreviousValue(last, rest, p.DeltaUpper)
	delta := FormatDelta(DeltaPercent(last, prev))

	kpis := make(map[string]KPI, len(p.KPIs)+1)
	for _, rule := range p.KPIs {
		kpis[string(rule.Key)] = KPI{
			Title: rule.Title,
			Value: p.kpiValue(rule, last, f.Zone, rest),
			Unit:  "µg/m³",
			Delta: delta,
		}
	}

	aqi := AQIFrom(last, p.AQI)
	aqiPrev := AQIFrom(prev, p.AQI)
	kpis[KPIKeyAQI] = KPI{
		Title: p.AQITitle,
		Value: aqi,
		Delta: FormatDelta(DeltaPercent(aqi, aqiPrev)),
		Tone:  AQIBand(aqi).Tone,
	}

	return Result{
		Series:   series,
		Multi:    multi,
		BarZones: bars,
		Pie:      pie,
		KPIs:     kpis,
	}
}

func (p Profile) kpiValue(rule KPIRule, last int, zone airquality.Zone, s *Stream) int {
	if rule.Spread == 0 {
		return int(float64(last) * rule.Factor)
	}
	v := p.Base(rule.Key)*p.Factor(zone) + (s.Float64()-0.5)*rule.Spread
	return Bounds{Min: 5, Max: rule.Cap}.RoundClamp(v)
}
