package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the domain counters of the API. A nil *Instruments is
// valid and records nothing.
type Instruments struct {
	dashboardServed metric.Int64Counter
	ingested        metric.Int64Counter
	alertsStored    metric.Int64Counter
}

// NewInstruments creates the domain counters on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	dashboardServed, err := meter.Int64Counter(
		"smartcity.dashboard.served",
		metric.WithDescription("Dashboard responses by data source"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	ingested, err := meter.Int64Counter(
		"smartcity.iot.ingested",
		metric.WithDescription("Accepted IoT pushes by zone"),
		metric.WithUnit("{push}"),
	)
	if err != nil {
		return nil, err
	}

	alertsStored, err := meter.Int64Counter(
		"smartcity.alerts.stored",
		metric.WithDescription("Alerts stored from IoT pushes by zone"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		dashboardServed: dashboardServed,
		ingested:        ingested,
		alertsStored:    alertsStored,
	}, nil
}

// DashboardServed counts a dashboard response built from source.
func (i *Instruments) DashboardServed(ctx context.Context, source string) {
	if i == nil {
		return
	}
	i.dashboardServed.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// Ingested counts an accepted push and the alerts it stored.
func (i *Instruments) Ingested(ctx context.Context, zone string, alerts int) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("zone", zone))
	i.ingested.Add(ctx, 1, attrs)
	if alerts > 0 {
		i.alertsStored.Add(ctx, int64(alerts), attrs)
	}
}
