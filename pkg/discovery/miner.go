// Package discovery runs the full mining pipeline: traces are folded into a
// directly-follows graph, scored, filtered and exposed for path queries.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-dfg/pkg/config"
	"github.com/dd0wney/cluso-dfg/pkg/dependency"
	"github.com/dd0wney/cluso-dfg/pkg/dfg"
	"github.com/dd0wney/cluso-dfg/pkg/filter"
	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/metrics"
)

// Run outcomes, used as metric labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Option configures a Miner
type Option func(*Miner)

// WithLogger sets the miner's logger
func WithLogger(logger logging.Logger) Option {
	return func(m *Miner) {
		m.logger = logging.OrNop(logger)
	}
}

// WithMetrics records pipeline metrics in registry
func WithMetrics(registry *metrics.Registry) Option {
	return func(m *Miner) {
		m.metrics = registry
	}
}

// WithBuildWorkers partitions traces across workers goroutines when workers != 1.
// Zero means one per CPU.
func WithBuildWorkers(workers int) Option {
	return func(m *Miner) {
		m.buildWorkers = workers
	}
}

// WithAnalysisWorkers runs shortest-path searches on a pool of workers when workers > 1
func WithAnalysisWorkers(workers int) Option {
	return func(m *Miner) {
		m.analysisWorkers = workers
	}
}

// WithArtificialEndpoints brackets every trace with synthetic start and end activities
func WithArtificialEndpoints(start, end string) Option {
	return func(m *Miner) {
		m.buildOpts = append(m.buildOpts, dfg.WithArtificialEndpoints(start, end))
	}
}

// Miner turns traces into filtered process models
type Miner struct {
	config  filter.Configuration
	logger  logging.Logger
	metrics *metrics.Registry

	buildWorkers    int
	analysisWorkers int
	buildOpts       []dfg.Option
}

// NewMiner validates cfg and creates a miner
func NewMiner(cfg filter.Configuration, opts ...Option) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Miner{
		config:          cfg,
		logger:          logging.NewNopLogger(),
		buildWorkers:    1,
		analysisWorkers: 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.Component("discovery"))
	return m, nil
}

// FromConfig creates a miner from a loaded settings file. Extra options are
// applied after the file's settings.
func FromConfig(cfg *config.Config, opts ...Option) (*Miner, error) {
	fc, err := cfg.FilterConfiguration()
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithBuildWorkers(cfg.Build.Workers),
		WithAnalysisWorkers(cfg.Analysis.Workers),
	}
	if cfg.Build.ArtificialEndpoints {
		base = append(base, WithArtificialEndpoints(cfg.Build.StartLabel, cfg.Build.EndLabel))
	}
	return NewMiner(fc, append(base, opts...)...)
}

// Configuration returns the filter configuration the miner applies
func (m *Miner) Configuration() filter.Configuration {
	return m.config
}

// Discover mines traces. No traces yields an empty model, not an error.
func (m *Miner) Discover(ctx context.Context, traces []dfg.Trace) (*Model, error) {
	runID := uuid.New()
	logger := m.logger.With(logging.RunID(runID))
	start := time.Now()
	timer := logging.StartTimer(logger, "discovery finished", logging.Count(len(traces)))

	model, err := m.discover(ctx, runID, logger, traces)
	if err != nil {
		timer.EndError(err)
		m.recordRun(StatusError, len(traces), time.Since(start))
		return nil, err
	}

	timer.End(
		logging.Int("activities", model.Raw.NodeCount()),
		logging.Int("edges_raw", model.Raw.EdgeCount()),
		logging.Int("edges_filtered", model.Filtered.EdgeCount()),
	)
	m.recordRun(StatusSuccess, len(traces), time.Since(start))
	return model, nil
}

func (m *Miner) discover(ctx context.Context, runID uuid.UUID, logger logging.Logger, traces []dfg.Trace) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := m.build(ctx, logger, traces)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	m.setSize(metrics.StageRaw, raw)

	deps, err := dependency.Compute(raw)
	if err != nil {
		return nil, fmt.Errorf("dependencies: %w", err)
	}

	f, err := filter.New(m.config,
		filter.WithLogger(logger),
		filter.WithMetrics(m.metrics),
		filter.WithWorkers(m.analysisWorkers),
	)
	if err != nil {
		return nil, err
	}
	res, err := f.ApplyWith(raw, deps)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	m.setSize(metrics.StageFiltered, res.Graph)

	return &Model{
		RunID:        runID,
		Traces:       len(traces),
		Raw:          raw,
		Filtered:     res.Graph,
		Dependencies: deps,
		FilterResult: res,
		workers:      m.analysisWorkers,
		logger:       logger,
		metrics:      m.metrics,
	}, nil
}

func (m *Miner) build(ctx context.Context, logger logging.Logger, traces []dfg.Trace) (*graph.Graph, error) {
	opts := append([]dfg.Option{dfg.WithLogger(logger)}, m.buildOpts...)
	if m.buildWorkers == 1 {
		return dfg.Build(traces, opts...)
	}
	return dfg.BuildParallel(ctx, traces, m.buildWorkers, opts...)
}

func (m *Miner) setSize(stage string, g *graph.Graph) {
	if m.metrics != nil {
		m.metrics.SetGraphSize(stage, g.NodeCount(), g.EdgeCount())
	}
}

func (m *Miner) recordRun(status string, traces int, d time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordDiscovery(status, traces, d)
	}
}
