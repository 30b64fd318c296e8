package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFilterMetrics() {
	r.EdgesPrunedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfg_filter_edges_pruned_total",
			Help: "Edges removed by the threshold filter, by step",
		},
		[]string{"step"},
	)

	r.EdgesRestoredTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "dfg_filter_edges_restored_total",
			Help: "Edges added back to preserve reachability",
		},
	)

	r.FilterFailures = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfg_filter_failures_total",
			Help: "Filter runs that failed, by reason",
		},
		[]string{"reason"},
	)
}
