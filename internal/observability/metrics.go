package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energymix/internal/catalogue"
	"energymix/internal/engine"
)

// Metrics records query and snapshot activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	snapshotRows  prometheus.Gauge
	snapshotYears *prometheus.GaugeVec
	reloads       prometheus.Counter
}

// NewMetrics registers the energymix collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energymix",
			Name:      "queries_total",
			Help:      "Catalogue queries executed, by query and outcome.",
		}, []string{"query", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "energymix",
			Name:      "query_duration_seconds",
			Help:      "Catalogue query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"query"}),
		snapshotRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energymix",
			Name:      "snapshot_rows",
			Help:      "Rows in the live record snapshot.",
		}),
		snapshotYears: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "energymix",
			Name:      "snapshot_year",
			Help:      "Earliest and latest year in the live snapshot.",
		}, []string{"bound"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energymix",
			Name:      "snapshot_reloads_total",
			Help:      "Snapshots published.",
		}),
	}
	m.registry.MustRegister(m.queries, m.queryDuration, m.snapshotRows, m.snapshotYears, m.reloads)
	return m
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveQuery records one query execution.
func (m *Metrics) ObserveQuery(name string, d time.Duration, err error) {
	m.queries.WithLabelValues(name, outcome(err)).Inc()
	m.queryDuration.WithLabelValues(name).Observe(d.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, catalogue.ErrUnknownQuery):
		return "unknown"
	case errors.Is(err, engine.ErrEmptyDataset):
		return "empty"
	default:
		return "error"
	}
}

// ObserveSnapshot records a newly published snapshot.
func (m *Metrics) ObserveSnapshot(s *engine.Store) {
	m.reloads.Inc()
	m.snapshotRows.Set(float64(s.Len()))
	if lo, err := s.EarliestYear(); err == nil {
		m.snapshotYears.WithLabelValues("earliest").Set(float64(lo))
	}
	if hi, err := s.LatestYear(); err == nil {
		m.snapshotYears.WithLabelValues("latest").Set(float64(hi))
	}
}
