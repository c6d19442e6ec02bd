// Package dashboard assembles dashboard and snapshot responses from stored
// readings, falling back to generated data when storage has nothing to show.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/simulation"
)

// ErrNoHistory is returned by a live source that has no points in the window.
var ErrNoHistory = errors.New("no stored history for period")

// SourceName identifies where a dashboard series came from.
type SourceName string

const (
	SourceLive      SourceName = "live"
	SourceSimulated SourceName = "simulated"
)

// Source provides the single-pollutant series of a dashboard.
type Source interface {
	Name() SourceName
	Series(ctx context.Context, f simulation.Filter, now time.Time) ([]simulation.SeriesPoint, error)
}

// HistoryReader reads stored pollutant history.
type HistoryReader interface {
	History(ctx context.Context, pollutant airquality.Pollutant, zone airquality.Zone, since time.Time) ([]airquality.HistoryPoint, error)
}

// SimulatedSource synthesizes the series.
type SimulatedSource struct {
	gen *simulation.Generator
}

// NewSimulatedSource creates a source backed by the generator.
func NewSimulatedSource(gen *simulation.Generator) *SimulatedSource {
	return &SimulatedSource{gen: gen}
}

// Name implements Source.
func (s *SimulatedSource) Name() SourceName { return SourceSimulated }

// Series implements Source.
func (s *SimulatedSource) Series(_ context.Context, f simulation.Filter, now time.Time) ([]simulation.SeriesPoint, error) {
	return s.gen.Series(f, now), nil
}

// LiveSource projects stored readings of the filter's pollutant and zone onto
// clock labels.
type LiveSource struct {
	history HistoryReader
}

// NewLiveSource creates a source backed by stored readings.
func NewLiveSource(history HistoryReader) *LiveSource {
	return &LiveSource{history: history}
}

// Name implements Source.
func (s *LiveSource) Name() SourceName { return SourceLive }

// Series implements Source. Values are truncated to whole units and only the
// most recent f.Period.Points() readings are kept.
func (s *LiveSource) Series(ctx context.Context, f simulation.Filter, now time.Time) ([]simulation.SeriesPoint, error) {
	f = f.Normalize()

	points, err := s.history.History(ctx, f.Pollutant, f.Zone, now.Add(-f.Period.Window()))
	if err != nil {
		return nil, fmt.Errorf("load %s history: %w", f.Pollutant, err)
	}
	if len(points) == 0 {
		return nil, ErrNoHistory
	}
	if n := f.Period.Points(); len(points) > n {
		points = points[len(points)-n:]
	}

	layout := f.Period.LabelFormat()
	series := make([]simulation.SeriesPoint, 0, len(points))
	for _, p := range points {
		series = append(series, simulation.SeriesPoint{
			T:     p.RecordedAt.In(now.Location()).Format(layout),
			Value: int(p.Value),
		})
	}
	return series, nil
}

var (
	_ Source = (*SimulatedSource)(nil)
	_ Source = (*LiveSource)(nil)
)
