package iot_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/iot"
)

var fixedNow = time.Date(2024, 1, 1, 10, 30, 12, 0, time.UTC)

type fixture struct {
	readings *airquality.InMemoryRepository
	alerts   *alert.Service
	latest   iot.LatestStore
	svc      *iot.Service
}

func newFixture(latest iot.LatestStore) *fixture {
	logger := zerolog.New(io.Discard)
	readings := airquality.NewInMemoryRepository()
	alerts := alert.NewService(alert.ServiceConfig{
		Repository: alert.NewInMemoryRepository(),
		Logger:     logger,
	})

	return &fixture{
		readings: readings,
		alerts:   alerts,
		latest:   latest,
		svc: iot.NewService(iot.ServiceConfig{
			City:     "Marseille",
			Readings: airquality.NewService(airquality.ServiceConfig{Repository: readings, Logger: logger}),
			Alerts:   alerts,
			Latest:   latest,
			Logger:   logger,
			Now:      func() time.Time { return fixedNow },
		}),
	}
}

func TestService_Ingest(t *testing.T) {
	f := newFixture(iot.NewMemoryLatestStore())
	ctx := context.Background()

	p := &iot.Payload{
		Zone: "centre",
		KPIs: iot.KPIs{PM25: 55, PM10: 60, NO2: 40, O3: 30, AQI: 94, Temperature: 18, Wind: 18, Humidity: 55},
		Alerts: []iot.AlertPayload{{
			ID: "iot-pm25-centre-7", Title: "Alerte PM2.5", Pollutant: "PM25",
			Value: 55, Unit: "µg/m³", Threshold: 50, Critical: true,
		}},
	}

	result, err := f.svc.Ingest(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ReadingID)
	assert.Equal(t, 1, result.AlertsStored)
	assert.True(t, result.LatestUpdated)

	stored, err := f.readings.LatestReading(ctx)
	require.NoError(t, err)
	assert.Equal(t, airquality.SourceIoT, stored.Source)
	assert.Equal(t, 55.0, *stored.PM25)

	recent, err := f.alerts.Recent(ctx, fixedNow)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "iot-pm25-centre-7", recent[0].ID)

	latest, err := f.svc.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "centre", latest[0].Zone)
	assert.Equal(t, 1, latest[0].AlertCount)
	assert.Equal(t, fixedNow, latest[0].ReceivedAt)
}

func TestService_Ingest_RejectsInvalidPayload(t *testing.T) {
	f := newFixture(iot.NewMemoryLatestStore())

	_, err := f.svc.Ingest(context.Background(), &iot.Payload{Zone: "banlieue"})
	assert.ErrorIs(t, err, iot.ErrInvalidZone)

	n, err := f.readings.CountReadings(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_Ingest_SameAlertTwice(t *testing.T) {
	f := newFixture(iot.NewMemoryLatestStore())
	ctx := context.Background()
	p := &iot.Payload{
		Zone:   "nord",
		Alerts: []iot.AlertPayload{{ID: "iot-pm10-nord-2", Pollutant: "PM10", Value: 85, Threshold: 80}},
	}

	first, err := f.svc.Ingest(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AlertsStored)

	again, err := f.svc.Ingest(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, again.AlertsStored, "a re-pushed alert ID is not stored again")

	count, err := f.alerts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type failingLatestStore struct{ iot.MemoryLatestStore }

func (*failingLatestStore) Set(context.Context, iot.Latest) error {
	return errors.New("cache down")
}

func TestService_Ingest_CacheFailureIsNotFatal(t *testing.T) {
	f := newFixture(&failingLatestStore{})

	result, err := f.svc.Ingest(context.Background(), &iot.Payload{Zone: "industrie"})
	require.NoError(t, err)
	assert.False(t, result.LatestUpdated)
}

func TestMemoryLatestStore_OrdersByZone(t *testing.T) {
	store := iot.NewMemoryLatestStore()
	ctx := context.Background()

	for _, zone := range []string{"nord", "centre", "industrie", "centre"} {
		require.NoError(t, store.Set(ctx, iot.Latest{Zone: zone, ReceivedAt: fixedNow}))
	}

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "centre", all[0].Zone)
	assert.Equal(t, "industrie", all[1].Zone)
	assert.Equal(t, "nord", all[2].Zone)
}

func TestRedisLatestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	defer client.Del(ctx, iot.RedisKeyPrefix+"centre", iot.RedisKeyPrefix+"nord")

	store := iot.NewRedisLatestStore(client, time.Minute)
	require.NoError(t, store.Set(ctx, iot.Latest{Zone: "nord", KPIs: iot.KPIs{PM25: 21}, ReceivedAt: fixedNow}))
	require.NoError(t, store.Set(ctx, iot.Latest{Zone: "centre", KPIs: iot.KPIs{PM25: 34}, ReceivedAt: fixedNow}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, "centre", all[0].Zone)
	assert.Equal(t, 34.0, all[0].KPIs.PM25)
	assert.True(t, all[0].ReceivedAt.Equal(fixedNow))
}
