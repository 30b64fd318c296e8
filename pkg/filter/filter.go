// Package filter prunes a directly-follows graph down to its dependable edges
// while keeping every activity on some path from a start to an end activity.
//
// Pruning runs in five steps over a clone of the raw graph:
//
//  1. positive observations: drop edges seen in too few traces
//  2. best retention: keep each node's best outgoing and incoming edge
//  3. relative to best: drop outgoing edges that lag the node's best one
//  4. dependency threshold: drop edges below the absolute threshold
//  5. restoration: add back raw edges until start/end connectivity holds
//
// Every decision is made against the raw graph's dependency table, so
// filtering a result again with Reapply reproduces it exactly.
package filter

import (
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/dependency"
	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/metrics"
)

// Step names, also used as metric labels
const (
	StepPositiveObservations = "positive_observations"
	StepBestRetention        = "best_retention"
	StepRelativeToBest       = "relative_to_best"
	StepDependencyThreshold  = "dependency_threshold"
	StepRestore              = "restore"
)

// StepStats describes what one step did
type StepStats struct {
	Step    string
	Skipped bool
	Removed int
	Kept    int // retained by step 2, restored by step 5
	Edges   int // edge count after the step
}

// Result is the outcome of one filter run
type Result struct {
	Graph         *graph.Graph // pruned graph, same node indices as Origin
	Origin        *graph.Graph // raw graph every decision was made against
	Dependencies  *dependency.Table
	Configuration Configuration

	Starts   []int
	Ends     []int
	Retained []graph.EdgeKey // step 2, ascending
	Restored []graph.EdgeKey // step 5, in restoration order
	Steps    []StepStats
}

// Option configures a Filter
type Option func(*Filter)

// WithLogger sets the filter's logger
func WithLogger(logger logging.Logger) Option {
	return func(f *Filter) {
		f.logger = logging.OrNop(logger)
	}
}

// WithMetrics records step outcomes in registry
func WithMetrics(registry *metrics.Registry) Option {
	return func(f *Filter) {
		f.metrics = registry
	}
}

// WithWorkers computes connectivity tables on a worker pool when workers > 1
func WithWorkers(workers int) Option {
	return func(f *Filter) {
		f.workers = workers
	}
}

// Filter applies one configuration to raw graphs
type Filter struct {
	config  Configuration
	logger  logging.Logger
	metrics *metrics.Registry
	workers int
}

// New validates config and creates a filter
func New(config Configuration, opts ...Option) (*Filter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	f := &Filter{
		config: config,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logging.Component("filter"))
	return f, nil
}

// Configuration returns the filter's configuration
func (f *Filter) Configuration() Configuration {
	return f.config
}

// Apply computes raw's dependency table and filters a clone of raw. raw is not modified.
// Applying a filter to its own output rescores dependencies on the pruned
// frequencies and may drop further edges; use Reapply for a second pass.
func (f *Filter) Apply(raw *graph.Graph) (*Result, error) {
	deps, err := dependency.Compute(raw)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return f.ApplyWith(raw, deps)
}

// ApplyWith filters a clone of raw using a dependency table already computed for it
func (f *Filter) ApplyWith(raw *graph.Graph, deps *dependency.Table) (*Result, error) {
	if !deps.ValidFor(raw) {
		f.failed("stale_dependencies")
		return nil, fmt.Errorf("filter: table %s, graph %s: %w", deps.Stamp(), raw.Stamp(), ErrStaleDependencies)
	}
	return f.prune(raw.Clone(), raw, deps)
}

// Reapply filters prev's pruned graph again against prev's origin. With an
// unchanged configuration the returned graph has exactly prev's edges.
func (f *Filter) Reapply(prev *Result) (*Result, error) {
	if !prev.Dependencies.ValidFor(prev.Origin) {
		f.failed("stale_dependencies")
		return nil, fmt.Errorf("filter: origin changed since %s: %w", prev.Dependencies.Stamp(), ErrStaleDependencies)
	}
	if prev.Graph.NodeCount() != prev.Origin.NodeCount() {
		f.failed("stale_dependencies")
		return nil, fmt.Errorf("filter: pruned graph has %d nodes, origin %d: %w",
			prev.Graph.NodeCount(), prev.Origin.NodeCount(), ErrStaleDependencies)
	}
	return f.prune(prev.Graph.Clone(), prev.Origin, prev.Dependencies)
}

func (f *Filter) prune(working, origin *graph.Graph, deps *dependency.Table) (*Result, error) {
	timer := logging.StartTimer(f.logger, "filter applied", logging.Stamp(origin.Stamp()))

	res := &Result{
		Graph:         working,
		Origin:        origin,
		Dependencies:  deps,
		Configuration: f.config,
	}

	starts, ends, err := f.endpoints(origin)
	if err != nil {
		f.failed("unknown_activity")
		timer.EndError(err)
		return nil, err
	}
	res.Starts, res.Ends = starts, ends

	p := &pruner{working: working, origin: origin, deps: deps, config: f.config}
	steps := []func() (StepStats, error){
		p.positiveObservations,
		p.bestRetention,
		p.relativeToBest,
		p.dependencyThreshold,
	}
	for _, step := range steps {
		stats, err := step()
		if err != nil {
			f.failed(stats.Step)
			timer.EndError(err)
			return nil, fmt.Errorf("filter step %s: %w", stats.Step, err)
		}
		res.Steps = append(res.Steps, f.observe(stats))
	}
	res.Retained = p.retainedKeys()

	restoreStats, restored, err := f.restore(p, starts, ends)
	if err != nil {
		f.failed("disconnected")
		timer.EndError(err)
		return nil, err
	}
	res.Restored = restored
	res.Steps = append(res.Steps, f.observe(restoreStats))

	if f.metrics != nil {
		f.metrics.RecordRestored(len(restored))
	}
	timer.End(
		logging.Int("edges_raw", origin.EdgeCount()),
		logging.Int("edges_kept", working.EdgeCount()),
		logging.Int("restored", len(restored)),
	)
	return res, nil
}

func (f *Filter) observe(s StepStats) StepStats {
	f.logger.Debug("filter step",
		logging.Step(s.Step),
		logging.Bool("skipped", s.Skipped),
		logging.Int("removed", s.Removed),
		logging.Int("kept", s.Kept),
		logging.Int("edges", s.Edges),
	)
	if f.metrics != nil {
		f.metrics.RecordPruned(s.Step, s.Removed)
	}
	return s
}

func (f *Filter) failed(reason string) {
	if f.metrics != nil {
		f.metrics.RecordFilterFailure(reason)
	}
}
