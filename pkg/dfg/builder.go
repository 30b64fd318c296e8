// Package dfg folds traces into a directly-follows graph.
package dfg

import (
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
)

// Trace is one case: the activity labels in the order they occurred
type Trace []string

// Default labels for the artificial endpoints
const (
	DefaultStartLabel = "|>"
	DefaultEndLabel   = "[]"
)

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the builder's logger
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.OrNop(logger)
	}
}

// WithArtificialEndpoints brackets every trace with a synthetic start and end
// activity, giving the graph a single source and a single sink
func WithArtificialEndpoints(start, end string) Option {
	return func(b *Builder) {
		b.wrap = true
		b.startLabel = start
		b.endLabel = end
	}
}

// Builder accumulates traces into a graph
type Builder struct {
	graph  *graph.Graph
	logger logging.Logger

	wrap       bool
	startLabel string
	endLabel   string

	traces int
	pairs  int
}

// NewBuilder creates a builder over an empty graph
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		graph:  graph.New(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.wrap {
		// Register endpoints first so they get indices 0 and 1 in every build
		b.graph.AddNode(b.startLabel)
		b.graph.AddNode(b.endLabel)
	}
	return b
}

// AddTrace registers every label of trace and counts each consecutive pair once
func (b *Builder) AddTrace(trace Trace) error {
	labels := []string(trace)
	if b.wrap {
		labels = make([]string, 0, len(trace)+2)
		labels = append(labels, b.startLabel)
		labels = append(labels, trace...)
		labels = append(labels, b.endLabel)
	}

	b.traces++
	if len(labels) == 0 {
		b.graph.RecordEmptyTrace()
		return nil
	}

	prev := b.graph.AddNode(labels[0])
	first := prev
	for _, label := range labels[1:] {
		cur := b.graph.AddNode(label)
		if err := b.graph.AddOrIncrementEdge(prev, cur, 1); err != nil {
			return fmt.Errorf("trace %d: %w", b.traces, err)
		}
		b.pairs++
		prev = cur
	}

	if err := b.graph.RecordTrace(first, prev); err != nil {
		return fmt.Errorf("trace %d: %w", b.traces, err)
	}
	return nil
}

// AddTraces adds traces in order
func (b *Builder) AddTraces(traces []Trace) error {
	for _, t := range traces {
		if err := b.AddTrace(t); err != nil {
			return err
		}
	}
	return nil
}

// Graph returns the graph built so far. The builder keeps ownership;
// callers should stop adding traces before handing it to analysis.
func (b *Builder) Graph() *graph.Graph {
	return b.graph
}

// Pairs returns how many directly-follows observations were counted
func (b *Builder) Pairs() int {
	return b.pairs
}

// Build folds traces sequentially into a new graph
func Build(traces []Trace, opts ...Option) (*graph.Graph, error) {
	b := NewBuilder(opts...)
	timer := logging.StartTimer(b.logger, "dfg built", logging.Component("dfg"))

	if len(traces) == 0 {
		b.logger.Warn("no traces supplied, returning empty graph", logging.Component("dfg"))
	}
	if err := b.AddTraces(traces); err != nil {
		timer.EndError(err)
		return nil, err
	}

	timer.End(
		logging.Int("traces", b.traces),
		logging.Int("pairs", b.pairs),
		logging.Int("nodes", b.graph.NodeCount()),
		logging.Int("edges", b.graph.EdgeCount()),
	)
	return b.graph, nil
}
