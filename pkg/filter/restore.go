package filter

import (
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/algorithms"
	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
)

// restore adds raw edges back until every node is reachable from a start
// and reaches an end. Each round fixes the lowest-index node that has a
// candidate edge into (or out of) the satisfied region, then recomputes.
// A fixed direction stays fixed, so each node gains at most one edge per
// direction.
func (f *Filter) restore(p *pruner, starts, ends []int) (StepStats, []graph.EdgeKey, error) {
	stats := StepStats{Step: StepRestore}
	var restored []graph.EdgeKey
	n := p.working.NodeCount()

	for n > 0 {
		table, err := f.pathTable(p.working)
		if err != nil {
			return stats, nil, err
		}
		fromStart, err := table.ReachableFrom(starts)
		if err != nil {
			return stats, nil, err
		}
		toEnd, err := table.CanReach(ends)
		if err != nil {
			return stats, nil, err
		}
		reached, reaching := mask(n, fromStart), mask(n, toEnd)

		var candidate *graph.Edge
		var unreachable, deadEnds []int
		for node := 0; node < n; node++ {
			if !reached[node] {
				if e, ok := p.bestInto(node, reached); ok {
					candidate = &e
					break
				}
				unreachable = append(unreachable, node)
			}
			if !reaching[node] {
				if e, ok := p.bestOutOf(node, reaching); ok {
					candidate = &e
					break
				}
				deadEnds = append(deadEnds, node)
			}
		}

		if candidate == nil {
			if len(unreachable) == 0 && len(deadEnds) == 0 {
				break
			}
			return stats, nil, &DisconnectedError{
				Unreachable: p.labels(unreachable),
				DeadEnds:    p.labels(deadEnds),
			}
		}

		if err := p.reinstate(*candidate); err != nil {
			return stats, nil, err
		}
		restored = append(restored, candidate.Key())
		f.logger.Info("edge restored",
			logging.Edge(candidate.Source, candidate.Target),
			logging.Int("frequency", candidate.Frequency),
			logging.Float64("dependency", p.dependency(*candidate)),
		)
	}

	stats.Kept = len(restored)
	stats.Edges = p.working.EdgeCount()
	return stats, restored, nil
}

func (f *Filter) pathTable(g *graph.Graph) (*algorithms.PathTable, error) {
	table, err := algorithms.ComputePathTable(g, f.workers, f.logger, f.metrics)
	if err != nil {
		return nil, fmt.Errorf("connectivity check: %w", err)
	}
	return table, nil
}

func mask(n int, nodes []int) []bool {
	m := make([]bool, n)
	for _, i := range nodes {
		m[i] = true
	}
	return m
}

// bestInto picks the best raw edge entering node from the reached region
func (p *pruner) bestInto(node int, reached []bool) (graph.Edge, bool) {
	in, err := p.origin.InEdges(node)
	if err != nil {
		return graph.Edge{}, false
	}
	return p.pick(in, source, func(e graph.Edge) bool { return reached[e.Source] })
}

// bestOutOf picks the best raw edge leaving node into the region that reaches an end
func (p *pruner) bestOutOf(node int, reaching []bool) (graph.Edge, bool) {
	out, err := p.origin.OutEdges(node)
	if err != nil {
		return graph.Edge{}, false
	}
	return p.pick(out, target, func(e graph.Edge) bool { return reaching[e.Target] })
}

func (p *pruner) pick(edges []graph.Edge, other func(graph.Edge) int, eligible func(graph.Edge) bool) (graph.Edge, bool) {
	var best graph.Edge
	found := false
	for _, e := range edges {
		if e.Key().IsLoop() || !eligible(e) || p.working.HasEdge(e.Source, e.Target) {
			continue
		}
		if !found || p.better(e, best, other) {
			best, found = e, true
		}
	}
	return best, found
}

// reinstate copies a raw edge back into the working graph
func (p *pruner) reinstate(e graph.Edge) error {
	if err := p.working.AddOrIncrementEdge(e.Source, e.Target, e.Frequency); err != nil {
		return err
	}
	if e.Capabilities.Has(graph.CapLabel) {
		return p.working.SetEdgeLabel(e.Source, e.Target, e.Label)
	}
	return nil
}

func (p *pruner) labels(nodes []int) []string {
	out := make([]string, 0, len(nodes))
	for _, i := range nodes {
		if n, err := p.origin.Node(i); err == nil {
			out = append(out, n.Label)
		}
	}
	return out
}
