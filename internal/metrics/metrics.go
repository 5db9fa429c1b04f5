// Package metrics exposes Prometheus metrics for ingestion runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// Metrics tracks per-source and per-run ingestion counters. A nil *Metrics is
// a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	alertsFetched   *prometheus.CounterVec
	alertsSaved     *prometheus.CounterVec
	alertsDuplicate *prometheus.CounterVec
	alertsDropped   *prometheus.CounterVec
	sourceFailures  *prometheus.CounterVec
	runsTotal       prometheus.Counter
	runDuration     prometheus.Histogram
}

// New creates a metrics set on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		alertsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_alerts_fetched_total",
			Help: "Raw records fetched per source.",
		}, []string{"source"}),
		alertsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_alerts_saved_total",
			Help: "New alerts persisted per source.",
		}, []string{"source"}),
		alertsDuplicate: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_alerts_duplicate_total",
			Help: "Alerts discarded as natural-key duplicates per source.",
		}, []string{"source"}),
		alertsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_alerts_dropped_total",
			Help: "Raw records dropped by normalization per source.",
		}, []string{"source"}),
		sourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingestor_source_failures_total",
			Help: "Source units that failed per source.",
		}, []string{"source"}),
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingestor_runs_total",
			Help: "Completed ingestion runs.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingestor_run_duration_seconds",
			Help:    "Wall-clock duration of ingestion runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSource records one source's tallies for a completed run.
func (m *Metrics) RecordSource(rep *models.SourceReport) {
	if m == nil {
		return
	}
	m.alertsFetched.WithLabelValues(rep.Source).Add(float64(rep.Fetched))
	m.alertsSaved.WithLabelValues(rep.Source).Add(float64(rep.Saved))
	m.alertsDuplicate.WithLabelValues(rep.Source).Add(float64(rep.Duplicate))
	m.alertsDropped.WithLabelValues(rep.Source).Add(float64(rep.Dropped))
	if rep.Failed {
		m.sourceFailures.WithLabelValues(rep.Source).Inc()
	}
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.runDuration.Observe(duration.Seconds())
}
