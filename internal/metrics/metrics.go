// Package metrics exports editor activity as prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the editor metrics.
type Collectors struct {
	Snapshots     *prometheus.CounterVec
	Navigations   *prometheus.CounterVec
	Restores      prometheus.Counter
	Commits       prometheus.Counter
	SnapshotBytes prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Snapshots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lessonflow_snapshots_total",
				Help: "Total number of history snapshots recorded",
			},
			[]string{"kind"},
		),
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lessonflow_history_navigations_total",
				Help: "Total number of undo, redo and clear operations",
			},
			[]string{"direction"},
		),
		Restores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonflow_restores_total",
			Help: "Total number of snapshots restored into the live document",
		}),
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lessonflow_commits_total",
			Help: "Total number of live document changes",
		}),
		SnapshotBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lessonflow_snapshot_bytes",
			Help:    "Encoded size of recorded snapshots",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}
	reg.MustRegister(c.Snapshots, c.Navigations, c.Restores, c.Commits, c.SnapshotBytes)
	return c
}

// Hooks returns lifecycle hooks feeding the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSnapshot: func(e *domain.HistoryEvent) {
			c.Snapshots.WithLabelValues(string(e.Type)).Inc()
			if e.Size > 0 {
				c.SnapshotBytes.Observe(float64(e.Size))
			}
		},
		OnNavigate: func(e *domain.HistoryEvent) {
			c.Navigations.WithLabelValues(string(e.Type)).Inc()
		},
		OnRestore: func(*domain.HistoryEvent) {
			c.Restores.Inc()
		},
		OnCommit: func(*domain.CommitEvent) {
			c.Commits.Inc()
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
