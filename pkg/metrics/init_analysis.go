package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.PathTablesComputed = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfg_path_tables_computed_total",
			Help: "All-pairs shortest path tables computed, by mode",
		},
		[]string{"mode"},
	)

	r.PathTableDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dfg_path_table_duration_seconds",
			Help:    "Time to compute an all-pairs shortest path table",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.PathTableStaleTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "dfg_path_table_stale_total",
			Help: "Cached path tables discarded because the graph changed",
		},
	)
}
