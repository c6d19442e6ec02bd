package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/iot"
	"github.com/smartcity/smartcity/internal/simulation"
	"github.com/smartcity/smartcity/internal/weather"
)

// LatestReader returns the most recent stored reading.
type LatestReader interface {
	Latest(ctx context.Context) (*airquality.Reading, error)
}

// AlertLister lists recent alerts.
type AlertLister interface {
	Recent(ctx context.Context, now time.Time) ([]*alert.Alert, error)
}

// IoTLister lists the latest sensor push per zone.
type IoTLister interface {
	Latest(ctx context.Context) ([]iot.Latest, error)
}

// ServiceConfig holds configuration for the dashboard service.
type ServiceConfig struct {
	// Generator synthesizes charts. Defaults to the dashboard profile.
	Generator *simulation.Generator

	// Live is the stored-data source. Nil when no database is configured.
	Live Source

	Readings LatestReader
	Alerts   AlertLister
	IoT      IoTLister
	Logger   zerolog.Logger

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service builds dashboard and snapshot responses.
type Service struct {
	gen       *simulation.Generator
	simulated *SimulatedSource
	live      Source
	readings  LatestReader
	alerts    AlertLister
	iot       IoTLister
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a dashboard service.
func NewService(cfg ServiceConfig) *Service {
	gen := cfg.Generator
	if gen == nil {
		gen = simulation.NewGenerator(simulation.DashboardProfile())
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		gen:       gen,
		simulated: NewSimulatedSource(gen),
		live:      cfg.Live,
		readings:  cfg.Readings,
		alerts:    cfg.Alerts,
		iot:       cfg.IoT,
		logger:    cfg.Logger,
		now:       now,
	}
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Dashboard is the dashboard response.
type Dashboard struct {
	Period    simulation.Period    `json:"period"`
	Zone      airquality.Zone      `json:"zone"`
	Pollutant airquality.Pollutant `json:"pollutant"`
	Source    SourceName           `json:"source"`
	UpdatedAt string               `json:"updatedAt"`
	simulation.Result
}

// Dashboard builds the dashboard for the filter. The series comes from the
// live source when it has data; every other chart is generated.
func (s *Service) Dashboard(ctx context.Context, f simulation.Filter) *Dashboard {
	f = f.Normalize()
	now := s.now()

	src := s.resolve()
	series, err := src.Series(ctx, f, now)
	if err != nil || len(series) == 0 {
		if err != nil && !errors.Is(err, ErrNoHistory) {
			s.logger.Warn().Err(err).Str("source", string(src.Name())).Msg("live series unavailable, using simulated data")
		}
		src = s.simulated
		series = nil
	}

	return &Dashboard{
		Period:    f.Period,
		Zone:      f.Zone,
		Pollutant: f.Pollutant,
		Source:    src.Name(),
		UpdatedAt: now.Format(time.RFC3339),
		Result:    s.gen.GenerateWith(f, now, series),
	}
}

// DataSource names the source a dashboard request would try first.
func (s *Service) DataSource() SourceName {
	return s.resolve().Name()
}

// resolve picks the series source for one request.
func (s *Service) resolve() Source {
	if s.live != nil {
		return s.live
	}
	return s.simulated
}

// Snapshot defaults used when a stored reading lacks a value.
const (
	DefaultAQI         = 50
	DefaultTemperature = 20
	DefaultWindKmh     = 10
	DefaultHumidity    = 60
)

// SourceDemo labels a snapshot built without stored readings.
const SourceDemo = "DEMO"

// SnapshotKPIs are the snapshot headline values. Wind is in km/h.
type SnapshotKPIs struct {
	AQI         int
	Temperature int
	Wind        int
	Humidity    int
	Sensors     iot.Sensors
}

// Snapshot is the city overview.
type Snapshot struct {
	UpdatedAt  time.Time
	KPIs       SnapshotKPIs
	Alerts     []alert.Alert
	DemoAlerts bool
	LastUpdate *time.Time
	Sensors    []iot.Latest
	Source     string
}

// Snapshot builds the overview from the latest stored reading, or from demo
// weather when nothing is stored.
func (s *Service) Snapshot(ctx context.Context) *Snapshot {
	now := s.now()
	alerts, demo := s.Alerts(ctx)

	snap := &Snapshot{
		UpdatedAt:  now,
		Alerts:     alerts,
		DemoAlerts: demo,
		Sensors:    s.sensors(ctx),
		Source:     SourceDemo,
	}

	reading := s.latestReading(ctx)
	if reading != nil {
		snap.KPIs = SnapshotKPIs{
			AQI:         intOr(reading.AQI, DefaultAQI),
			Temperature: truncOr(reading.Temperature, DefaultTemperature),
			Wind:        DefaultWindKmh,
			Humidity:    truncOr(reading.Humidity, DefaultHumidity),
		}
		if reading.WindSpeed != nil && *reading.WindSpeed != 0 {
			snap.KPIs.Wind = weather.KmhFromMetersPerSecond(*reading.WindSpeed)
		}
		recorded := reading.RecordedAt
		snap.LastUpdate = &recorded
		snap.Source = string(reading.Source)
	} else {
		w := simulation.SnapshotWeather(now)
		snap.KPIs = SnapshotKPIs{
			AQI:         simulation.SnapshotAQI(alerts),
			Temperature: w.Temperature,
			Wind:        w.Wind,
			Humidity:    w.Humidity,
		}
	}
	snap.KPIs.Sensors = iot.Sensors{Active: len(airquality.SensorZones), Total: len(airquality.SensorZones)}

	return snap
}

// Alerts returns recent stored alerts, or the demo alerts when none are
// stored. The flag reports whether the demo alerts were used.
func (s *Service) Alerts(ctx context.Context) ([]alert.Alert, bool) {
	now := s.now()
	if s.alerts != nil {
		stored, err := s.alerts.Recent(ctx, now)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to load recent alerts")
		}
		if len(stored) > 0 {
			out := make([]alert.Alert, 0, len(stored))
			for _, a := range stored {
				out = append(out, *a)
			}
			return out, false
		}
	}
	return simulation.DemoAlerts(now), true
}

func (s *Service) latestReading(ctx context.Context) *airquality.Reading {
	if s.readings == nil {
		return nil
	}
	r, err := s.readings.Latest(ctx)
	if err != nil {
		if !errors.Is(err, airquality.ErrNoReadings) {
			s.logger.Warn().Err(err).Msg("failed to load latest reading")
		}
		return nil
	}
	return r
}

func (s *Service) sensors(ctx context.Context) []iot.Latest {
	if s.iot == nil {
		return []iot.Latest{}
	}
	latest, err := s.iot.Latest(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load latest iot pushes")
		return []iot.Latest{}
	}
	return latest
}

func intOr(v *int, def int) int {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func truncOr(v *float64, def int) int {
	if v == nil || *v == 0 {
		return def
	}
	return int(*v)
}
