package worker

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the collection job's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	runs        prometheus.Counter
	collections *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	readings    prometheus.Counter
	alerts      prometheus.Counter
	archived    *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

// NewMetrics registers the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "collect_runs_total",
			Help: "Total collection runs started.",
		}),
		collections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collect_provider_fetches_total",
			Help: "Provider fetches by provider and status.",
		}, []string{"provider", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collect_provider_fetch_duration_seconds",
			Help:    "Histogram of provider fetch durations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		readings: factory.NewCounter(prometheus.CounterOpts{
			Name: "collect_readings_stored_total",
			Help: "Readings stored by the collection job.",
		}),
		alerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "collect_alerts_raised_total",
			Help: "Alerts raised from collected readings.",
		}),
		archived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collect_raw_archived_total",
			Help: "Raw payload archive writes by status.",
		}, []string{"status"}),
		lastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "collect_last_success_timestamp_seconds",
			Help: "Unix time of the last successful fetch per provider.",
		}, []string{"provider"}),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeFetch(provider string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.collections.WithLabelValues(provider, status).Inc()
	m.duration.WithLabelValues(provider).Observe(d.Seconds())
	if err == nil {
		m.lastSuccess.WithLabelValues(provider).SetToCurrentTime()
	}
}

func (m *Metrics) observeArchive(err error) {
	if err != nil {
		m.archived.WithLabelValues("error").Inc()
		return
	}
	m.archived.WithLabelValues("success").Inc()
}
