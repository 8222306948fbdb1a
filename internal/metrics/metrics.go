// Package metrics holds the Prometheus collectors of a svcwiki run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "svcwiki"

// Metrics represents the collectors of one batch run. Each instance owns a
// private registry so tests and repeated runs do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	ServicesTotal    *prometheus.CounterVec
	PagesPublished   *prometheus.CounterVec
	LinkChecks       *prometheus.CounterVec
	CatalogRequests  prometheus.Counter
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	RunFailures      *prometheus.CounterVec
}

// NewMetrics creates and registers all run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.ServicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_total",
			Help:      "Services processed, by report outcome",
		},
		[]string{"outcome"},
	)

	m.PagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_published_total",
			Help:      "Wiki pages handled, by publish action",
		},
		[]string{"action"},
	)

	m.LinkChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_checks_total",
			Help:      "Documentation links checked, by result state",
		},
		[]string{"state"},
	)

	m.CatalogRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "HTTP requests issued to the service catalog",
		},
	)

	m.RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		},
	)

	m.LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished",
		},
	)

	m.RunFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed runs, by error kind",
		},
		[]string{"kind"},
	)

	m.Registry.MustRegister(
		m.ServicesTotal,
		m.PagesPublished,
		m.LinkChecks,
		m.CatalogRequests,
		m.RunDuration,
		m.LastRunTimestamp,
		m.RunFailures,
	)

	return m
}

// ObserveRun records the duration and completion time of a run.
func (m *Metrics) ObserveRun(start, end time.Time) {
	m.RunDuration.Set(end.Sub(start).Seconds())
	m.LastRunTimestamp.Set(float64(end.Unix()))
}

// Push sends the registry to a Prometheus Pushgateway. A batch job exits
// before it could be scraped.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(m.Registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
