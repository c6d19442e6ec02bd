package airquality_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/airquality"
)

// countingRepository wraps the in-memory repository and counts latest lookups.
type countingRepository struct {
	*airquality.InMemoryRepository
	latestCount atomic.Int32
	err         error
}

func (c *countingRepository) LatestReading(ctx context.Context) (*airquality.Reading, error) {
	c.latestCount.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.InMemoryRepository.LatestReading(ctx)
}

func newService(repo airquality.Repository) *airquality.Service {
	return airquality.NewService(airquality.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.New(io.Discard),
		CacheTTL:   time.Minute,
	})
}

func TestService_Latest_Caches(t *testing.T) {
	repo := &countingRepository{InMemoryRepository: airquality.NewInMemoryRepository()}
	ctx := context.Background()
	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{AQI: airquality.Int(42), Source: airquality.SourceAQICN}))

	svc := newService(repo)

	first, err := svc.Latest(ctx)
	require.NoError(t, err)
	second, err := svc.Latest(ctx)
	require.NoError(t, err)

	assert.Equal(t, 42, *first.AQI)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), repo.latestCount.Load())

	status := svc.CacheStatus()
	assert.True(t, status.HasData)
	assert.Equal(t, airquality.SourceAQICN, status.Source)
}

func TestService_Latest_NoReadings(t *testing.T) {
	svc := newService(airquality.NewInMemoryRepository())

	_, err := svc.Latest(context.Background())
	assert.ErrorIs(t, err, airquality.ErrNoReadings)
	assert.False(t, svc.CacheStatus().HasData)
}

func TestService_Record_InvalidatesCache(t *testing.T) {
	repo := &countingRepository{InMemoryRepository: airquality.NewInMemoryRepository()}
	ctx := context.Background()
	svc := newService(repo)

	require.NoError(t, svc.Record(ctx, &airquality.Reading{AQI: airquality.Int(30), RecordedAt: time.Now().Add(-time.Minute)}))
	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, *latest.AQI)

	require.NoError(t, svc.Record(ctx, &airquality.Reading{AQI: airquality.Int(90)}))
	latest, err = svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, *latest.AQI)
	assert.Equal(t, int32(2), repo.latestCount.Load())
}

func TestService_Latest_ServesStaleOnError(t *testing.T) {
	repo := &countingRepository{InMemoryRepository: airquality.NewInMemoryRepository()}
	ctx := context.Background()
	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{AQI: airquality.Int(55)}))

	svc := airquality.NewService(airquality.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.New(io.Discard),
		CacheTTL:   time.Millisecond,
	})

	_, err := svc.Latest(ctx)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	repo.err = errors.New("connection reset")

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, *latest.AQI)
}

func TestInMemoryRepository_History(t *testing.T) {
	repo := airquality.NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{RecordedAt: now.Add(-2 * time.Hour), PM25: airquality.Float(12)}))
	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{RecordedAt: now.Add(-10 * time.Minute), PM25: airquality.Float(20)}))
	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{RecordedAt: now.Add(-30 * time.Minute), PM25: airquality.Float(18)}))
	require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{RecordedAt: now.Add(-5 * time.Minute), PM10: airquality.Float(40)}))

	points, err := repo.History(ctx, airquality.PollutantPM25, airquality.ZoneAll, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 18.0, points[0].Value)
	assert.Equal(t, 20.0, points[1].Value)

	count, err := repo.CountReadings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestInMemoryRepository_HistoryByZone(t *testing.T) {
	repo := airquality.NewInMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	for _, r := range []struct {
		zone airquality.Zone
		pm25 float64
	}{
		{airquality.ZoneCentre, 21},
		{airquality.ZoneIndustrie, 48},
		{airquality.ZoneCentre, 23},
		{airquality.ZoneAll, 30},
	} {
		require.NoError(t, repo.SaveReading(ctx, &airquality.Reading{
			RecordedAt: now.Add(-time.Duration(r.pm25) * time.Second),
			Zone:       r.zone,
			PM25:       airquality.Float(r.pm25),
		}))
	}

	centre, err := repo.History(ctx, airquality.PollutantPM25, airquality.ZoneCentre, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, centre, 2)
	assert.Equal(t, 23.0, centre[0].Value)
	assert.Equal(t, 21.0, centre[1].Value)

	nord, err := repo.History(ctx, airquality.PollutantPM25, airquality.ZoneNord, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, nord)

	all, err := repo.History(ctx, airquality.PollutantPM25, airquality.ZoneAll, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestInMemoryRepository_CollectionLogs(t *testing.T) {
	repo := airquality.NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveCollectionLog(ctx, &airquality.CollectionLog{Source: airquality.SourceAQICN, Status: airquality.CollectionSuccess, RecordsCollected: 1}))
	require.NoError(t, repo.SaveCollectionLog(ctx, &airquality.CollectionLog{Source: airquality.SourceOpenWeather, Status: airquality.CollectionError, ErrorMessage: "timeout"}))

	logs, err := repo.RecentCollectionLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, airquality.SourceOpenWeather, logs[0].Source)
	assert.Equal(t, "timeout", logs[0].ErrorMessage)
}

func TestParseZoneAndPollutant(t *testing.T) {
	assert.Equal(t, airquality.ZoneIndustrie, airquality.ParseZone("Industrie"))
	assert.Equal(t, airquality.ZoneAll, airquality.ParseZone("banlieue"))
	assert.Equal(t, airquality.ZoneAll, airquality.ParseZone(""))

	assert.Equal(t, airquality.PollutantPM25, airquality.ParsePollutant("PM2.5"))
	assert.Equal(t, airquality.PollutantSO2, airquality.ParsePollutant("so2"))
	assert.Equal(t, airquality.PollutantPM25, airquality.ParsePollutant("CO2"))

	assert.Equal(t, "Zone Industrielle", airquality.ZoneIndustrie.Info().Label)
	assert.Equal(t, "Centre-ville", airquality.Zone("unknown").Info().Label)
	assert.Len(t, airquality.Zones(), 4)
}
