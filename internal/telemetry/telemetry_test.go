package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/smartcity/smartcity/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "smartcity-api",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, telemetry.Sampler(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, telemetry.Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, telemetry.Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")

	var _ trace.Sampler = telemetry.Sampler(0.5)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	inst, err := telemetry.NewInstruments(meter)
	require.NoError(t, err)

	ctx := context.Background()
	inst.DashboardServed(ctx, "simulated")
	inst.DashboardServed(ctx, "simulated")
	inst.DashboardServed(ctx, "live")
	inst.Ingested(ctx, "nord", 2)
	inst.Ingested(ctx, "nord", 0)

	sums := collect(t, reader)

	served := sums["smartcity.dashboard.served"]
	require.Len(t, served.DataPoints, 2)
	bySource := map[string]int64{}
	for _, dp := range served.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("source"))
		require.True(t, ok)
		bySource[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"simulated": 2, "live": 1}, bySource)

	ingested := sums["smartcity.iot.ingested"]
	require.Len(t, ingested.DataPoints, 1)
	assert.Equal(t, int64(2), ingested.DataPoints[0].Value)

	stored := sums["smartcity.alerts.stored"]
	require.Len(t, stored.DataPoints, 1)
	assert.Equal(t, int64(2), stored.DataPoints[0].Value)
}

func TestInstruments_Nil(t *testing.T) {
	var inst *telemetry.Instruments
	assert.NotPanics(t, func() {
		inst.DashboardServed(context.Background(), "live")
		inst.Ingested(context.Background(), "centre", 1)
	})
}
