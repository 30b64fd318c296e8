package algorithms

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/metrics"
	"github.com/dd0wney/cluso-dfg/pkg/parallel"
)

// Path table computation modes, used as metric labels
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// PathTable holds all-pairs shortest paths of one graph version
type PathTable struct {
	stamp graph.Stamp
	rows  []*ShortestPathTree
}

// AllPairs runs one single-source search per node
func AllPairs(g *graph.Graph) (*PathTable, error) {
	adj, stamp := g.Adjacency()
	rows := make([]*ShortestPathTree, len(adj))
	for src := range adj {
		rows[src] = dijkstra(adj, src)
		rows[src].stamp = stamp
	}
	return &PathTable{stamp: stamp, rows: rows}, nil
}

// AllPairsParallel distributes the per-source searches over a worker pool.
// Each task writes only its own row. A non-positive worker count selects
// parallel.DefaultWorkers.
func AllPairsParallel(g *graph.Graph, workers int, logger logging.Logger) (*PathTable, error) {
	logger = logging.OrNop(logger).With(logging.Component("shortest_path"))
	adj, stamp := g.Adjacency()
	if len(adj) == 0 {
		return &PathTable{stamp: stamp}, nil
	}

	pool, err := parallel.NewWorkerPool(workers, logger)
	if err != nil {
		return nil, fmt.Errorf("all-pairs shortest paths: %w", err)
	}

	timer := logging.StartTimer(logger, "path table computed",
		logging.Stamp(stamp), logging.Int("workers", pool.Workers()))
	rows := make([]*ShortestPathTree, len(adj))
	for src := range adj {
		if !pool.Submit(func() {
			row := dijkstra(adj, src)
			row.stamp = stamp
			rows[src] = row
		}) {
			pool.Close()
			return nil, fmt.Errorf("all-pairs shortest paths: pool closed before source %d", src)
		}
	}
	pool.Close()

	if n := pool.Panics(); n > 0 {
		err := fmt.Errorf("all-pairs shortest paths: %d source searches panicked", n)
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.Count(len(rows)))
	return &PathTable{stamp: stamp, rows: rows}, nil
}

// ComputePathTable runs AllPairs, or AllPairsParallel when workers > 1, and
// records the computation in registry when it is not nil
func ComputePathTable(g *graph.Graph, workers int, logger logging.Logger, registry *metrics.Registry) (*PathTable, error) {
	start := time.Now()
	mode := ModeSequential
	var table *PathTable
	var err error
	if workers > 1 {
		mode = ModeParallel
		table, err = AllPairsParallel(g, workers, logger)
	} else {
		table, err = AllPairs(g)
	}
	if err != nil {
		return nil, err
	}
	if registry != nil {
		registry.RecordPathTable(mode, time.Since(start))
	}
	return table, nil
}

// Size returns the number of nodes covered by the table
func (t *PathTable) Size() int {
	return len(t.rows)
}

func (t *PathTable) check(op string, indices ...int) error {
	for _, i := range indices {
		if i < 0 || i >= len(t.rows) {
			return graph.InvalidNodeError(op, i, len(t.rows))
		}
	}
	return nil
}

// Distance returns the shortest hop count from a to b. distance(a, a) is 0.
func (t *PathTable) Distance(a, b int) (PathLength, error) {
	if err := t.check("Distance", a, b); err != nil {
		return NoPath, err
	}
	return t.rows[a].Distances[b], nil
}

// PathExists reports whether b is reachable from a
func (t *PathTable) PathExists(a, b int) (bool, error) {
	d, err := t.Distance(a, b)
	if err != nil {
		return false, err
	}
	return d.Reachable(), nil
}

// Predecessor returns the node before b on the shortest path from a.
// ok is false when a == b or b is unreachable.
func (t *PathTable) Predecessor(a, b int) (int, bool, error) {
	if err := t.check("Predecessor", a, b); err != nil {
		return 0, false, err
	}
	p := t.rows[a].Predecessors[b]
	return p, p != noPredecessor, nil
}

// Path returns the node sequence from a to b, or nil if there is none
func (t *PathTable) Path(a, b int) ([]int, error) {
	if err := t.check("Path", a, b); err != nil {
		return nil, err
	}
	return t.rows[a].PathTo(b)
}

// ReachableFrom returns, ascending, every node reachable from at least one source
func (t *PathTable) ReachableFrom(sources []int) ([]int, error) {
	if err := t.check("ReachableFrom", sources...); err != nil {
		return nil, err
	}
	return t.collect(func(node int) bool {
		for _, s := range sources {
			if t.rows[s].Distances[node].Reachable() {
				return true
			}
		}
		return false
	}), nil
}

// CanReach returns, ascending, every node that reaches at least one target
func (t *PathTable) CanReach(targets []int) ([]int, error) {
	if err := t.check("CanReach", targets...); err != nil {
		return nil, err
	}
	return t.collect(func(node int) bool {
		for _, target := range targets {
			if t.rows[node].Distances[target].Reachable() {
				return true
			}
		}
		return false
	}), nil
}

func (t *PathTable) collect(keep func(int) bool) []int {
	out := make([]int, 0, len(t.rows))
	for node := range t.rows {
		if keep(node) {
			out = append(out, node)
		}
	}
	return out
}

// Stamp identifies the graph version the table was computed from
func (t *PathTable) Stamp() graph.Stamp {
	return t.stamp
}

// Stale reports whether g has moved past the table's version or is a different graph
func (t *PathTable) Stale(g *graph.Graph) bool {
	return g == nil || g.Stamp() != t.stamp
}
