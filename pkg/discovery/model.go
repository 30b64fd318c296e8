package discovery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-dfg/pkg/algorithms"
	"github.com/dd0wney/cluso-dfg/pkg/dependency"
	"github.com/dd0wney/cluso-dfg/pkg/filter"
	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/metrics"
)

// ErrUnknownActivity is returned for label queries naming no activity of the model
var ErrUnknownActivity = filter.ErrUnknownActivity

// Model is the outcome of one discovery run
type Model struct {
	RunID        uuid.UUID
	Traces       int
	Raw          *graph.Graph
	Filtered     *graph.Graph
	Dependencies *dependency.Table
	FilterResult *filter.Result

	workers int
	logger  logging.Logger
	metrics *metrics.Registry

	mu    sync.Mutex
	paths *algorithms.PathTable
}

// EdgeView is an edge resolved to activity labels
type EdgeView struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	SourceIndex int     `json:"source_index"`
	TargetIndex int     `json:"target_index"`
	Frequency   int     `json:"frequency"`
	Dependency  float64 `json:"dependency"`
	Restored    bool    `json:"restored,omitempty"`
}

// Summary condenses a model for reports
type Summary struct {
	RunID         string `json:"run_id"`
	Traces        int    `json:"traces"`
	Activities    int    `json:"activities"`
	RawEdges      int    `json:"raw_edges"`
	FilteredEdges int    `json:"filtered_edges"`
	Restored      int    `json:"restored"`
	LoopRegions   int    `json:"loop_regions"`
}

// Edges returns the filtered edges, most frequent first
func (m *Model) Edges() []EdgeView {
	return m.views(m.Filtered)
}

// RawEdges returns every observed edge, most frequent first
func (m *Model) RawEdges() []EdgeView {
	return m.views(m.Raw)
}

func (m *Model) views(g *graph.Graph) []EdgeView {
	edges := g.Edges()
	sort.SliceStable(edges, func(i, j int) bool {
		// highest frequency first, ties by ascending endpoints
		if edges[i].Frequency != edges[j].Frequency {
			return graph.CompareEdges(edges[i], edges[j]) > 0
		}
		return graph.CompareEdges(edges[i], edges[j]) < 0
	})

	restored := make(map[graph.EdgeKey]bool)
	if m.FilterResult != nil && g == m.Filtered {
		for _, k := range m.FilterResult.Restored {
			restored[k] = true
		}
	}

	nodes := m.Raw.Nodes()
	out := make([]EdgeView, len(edges))
	for i, e := range edges {
		dep, _ := m.Dependencies.Lookup(e.Source, e.Target)
		out[i] = EdgeView{
			Source:      nodes[e.Source].Label,
			Target:      nodes[e.Target].Label,
			SourceIndex: e.Source,
			TargetIndex: e.Target,
			Frequency:   e.Frequency,
			Dependency:  dep,
			Restored:    restored[e.Key()],
		}
	}
	return out
}

// Activities returns the activity labels in index order
func (m *Model) Activities() []string {
	nodes := m.Raw.Nodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

// ShortestPaths returns the path table of the filtered graph, recomputing it
// when the graph has changed since the cached table was built
func (m *Model) ShortestPaths() (*algorithms.PathTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paths != nil {
		if !m.paths.Stale(m.Filtered) {
			return m.paths, nil
		}
		m.logger.Warn("path table stale, recomputing",
			logging.Stamp(m.paths.Stamp()), logging.String("current", m.Filtered.Stamp().String()))
		if m.metrics != nil {
			m.metrics.RecordStalePathTable()
		}
	}

	table, err := algorithms.ComputePathTable(m.Filtered, m.workers, m.logger, m.metrics)
	if err != nil {
		return nil, err
	}
	m.paths = table
	return table, nil
}

func (m *Model) resolve(labels ...string) ([]int, error) {
	out := make([]int, len(labels))
	for i, label := range labels {
		idx, ok := m.Filtered.Lookup(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, label)
		}
		out[i] = idx
	}
	return out, nil
}

// Distance returns the number of edges on the shortest filtered path between two activities
func (m *Model) Distance(from, to string) (algorithms.PathLength, error) {
	idx, err := m.resolve(from, to)
	if err != nil {
		return algorithms.NoPath, err
	}
	table, err := m.ShortestPaths()
	if err != nil {
		return algorithms.NoPath, err
	}
	return table.Distance(idx[0], idx[1])
}

// PathExists reports whether to can follow from in the filtered model
func (m *Model) PathExists(from, to string) (bool, error) {
	d, err := m.Distance(from, to)
	if err != nil {
		return false, err
	}
	return d.Reachable(), nil
}

// Path returns the activity labels along a shortest filtered path, or nil
func (m *Model) Path(from, to string) ([]string, error) {
	idx, err := m.resolve(from, to)
	if err != nil {
		return nil, err
	}
	table, err := m.ShortestPaths()
	if err != nil {
		return nil, err
	}
	path, err := table.Path(idx[0], idx[1])
	if err != nil || path == nil {
		return nil, err
	}
	nodes := m.Filtered.Nodes()
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = nodes[n].Label
	}
	return out, nil
}

// LoopRegions returns groups of activities that can all recur after one
// another in the filtered model
func (m *Model) LoopRegions() [][]string {
	scc := algorithms.StronglyConnectedComponents(m.Filtered)
	nodes := m.Filtered.Nodes()
	var out [][]string
	for _, members := range scc.LoopRegions() {
		labels := make([]string, len(members))
		for i, n := range members {
			labels[i] = nodes[n].Label
		}
		out = append(out, labels)
	}
	return out
}

// Summary returns headline counts for the run
func (m *Model) Summary() Summary {
	s := Summary{
		RunID:         m.RunID.String(),
		Traces:        m.Traces,
		Activities:    m.Raw.NodeCount(),
		RawEdges:      m.Raw.EdgeCount(),
		FilteredEdges: m.Filtered.EdgeCount(),
		LoopRegions:   len(m.LoopRegions()),
	}
	if m.FilterResult != nil {
		s.Restored = len(m.FilterResult.Restored)
	}
	return s
}
