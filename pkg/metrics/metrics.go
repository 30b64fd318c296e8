package metrics

import (
	"time"
)

// Graph stages
const (
	StageRaw      = "raw"
	StageFiltered = "filtered"
)

// RecordDiscovery records one discovery run
func (r *Registry) RecordDiscovery(status string, traces int, duration time.Duration) {
	r.DiscoveryRunsTotal.WithLabelValues(status).Inc()
	r.DiscoveryDuration.Observe(duration.Seconds())
	r.TracesProcessedTotal.Add(float64(traces))
}

// SetGraphSize publishes the node and edge counts of a graph stage
func (r *Registry) SetGraphSize(stage string, nodes, edges int) {
	r.GraphNodes.WithLabelValues(stage).Set(float64(nodes))
	r.GraphEdges.WithLabelValues(stage).Set(float64(edges))
}

// RecordPruned adds the number of edges a filter step removed
func (r *Registry) RecordPruned(step string, edges int) {
	if edges <= 0 {
		return
	}
	r.EdgesPrunedTotal.WithLabelValues(step).Add(float64(edges))
}

// RecordRestored adds the number of edges put back by connectivity restoration
func (r *Registry) RecordRestored(edges int) {
	if edges <= 0 {
		return
	}
	r.EdgesRestoredTotal.Add(float64(edges))
}

// RecordFilterFailure counts a failed filter run
func (r *Registry) RecordFilterFailure(reason string) {
	r.FilterFailures.WithLabelValues(reason).Inc()
}

// RecordPathTable records one all-pairs computation
func (r *Registry) RecordPathTable(mode string, duration time.Duration) {
	r.PathTablesComputed.WithLabelValues(mode).Inc()
	r.PathTableDuration.Observe(duration.Seconds())
}

// RecordStalePathTable counts a cached table that had to be recomputed
func (r *Registry) RecordStalePathTable() {
	r.PathTableStaleTotal.Inc()
}
