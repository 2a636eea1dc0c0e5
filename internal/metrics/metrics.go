package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's prometheus instruments. A fresh registry per
// instance keeps tests independent.
type Metrics struct {
	Registry *prometheus.Registry

	SyncRuns       *prometheus.CounterVec
	SyncDuration   prometheus.Histogram
	ResolveTotal   *prometheus.CounterVec
	FetchErrors    *prometheus.CounterVec
	PointsUpserted prometheus.Counter
	AlertsFired    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "macrolens_sync_runs_total",
			Help: "Sync runs by final status.",
		}, []string{"status"}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "macrolens_sync_duration_seconds",
			Help:    "Wall time of full sync runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ResolveTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "macrolens_resolve_total",
			Help: "Indicator resolutions by outcome.",
		}, []string{"outcome"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "macrolens_fetch_errors_total",
			Help: "Provider fetch errors by provider and kind.",
		}, []string{"provider", "kind"}),
		PointsUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "macrolens_points_upserted_total",
			Help: "Observation rows written.",
		}),
		AlertsFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "macrolens_alerts_fired_total",
			Help: "Alert rules triggered.",
		}),
	}
}
