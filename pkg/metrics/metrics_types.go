package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the discovery engine
type Registry struct {
	// Discovery Metrics
	DiscoveryRunsTotal   *prometheus.CounterVec
	DiscoveryDuration    prometheus.Histogram
	TracesProcessedTotal prometheus.Counter
	GraphNodes           *prometheus.GaugeVec
	GraphEdges           *prometheus.GaugeVec

	// Filter Metrics
	EdgesPrunedTotal   *prometheus.CounterVec
	EdgesRestoredTotal prometheus.Counter
	FilterFailures     *prometheus.CounterVec

	// Analysis Metrics
	PathTablesComputed  *prometheus.CounterVec
	PathTableDuration   prometheus.Histogram
	PathTableStaleTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initDiscoveryMetrics()
	r.initFilterMetrics()
	r.initAnalysisMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
