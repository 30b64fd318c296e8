package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDiscoveryMetrics() {
	r.DiscoveryRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfg_discovery_runs_total",
			Help: "Total number of discovery runs",
		},
		[]string{"status"},
	)

	r.DiscoveryDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dfg_discovery_duration_seconds",
			Help:    "End-to-end discovery duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
	)

	r.TracesProcessedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "dfg_traces_processed_total",
			Help: "Total number of traces folded into directly-follows graphs",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dfg_graph_nodes",
			Help: "Number of activities in the most recent graph, by stage",
		},
		[]string{"stage"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dfg_graph_edges",
			Help: "Number of directly-follows edges in the most recent graph, by stage",
		},
		[]string{"stage"},
	)
}
