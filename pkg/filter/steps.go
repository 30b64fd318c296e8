package filter

import (
	"sort"

	"github.com/dd0wney/cluso-dfg/pkg/dependency"
	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// pruner carries the state shared by the pruning steps of one run
type pruner struct {
	working *graph.Graph
	origin  *graph.Graph
	deps    *dependency.Table
	config  Configuration

	retained map[graph.EdgeKey]struct{}
	bestOut  map[int]graph.Edge
}

func (p *pruner) dependency(e graph.Edge) float64 {
	v, _ := p.deps.Lookup(e.Source, e.Target)
	return v
}

// better orders edges by dependency, then frequency, then the lower index
// of the endpoint selected by other
func (p *pruner) better(a, b graph.Edge, other func(graph.Edge) int) bool {
	da, db := p.dependency(a), p.dependency(b)
	if da != db {
		return da > db
	}
	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	return other(a) < other(b)
}

func target(e graph.Edge) int { return e.Target }
func source(e graph.Edge) int { return e.Source }

func (p *pruner) isRetained(e graph.Edge) bool {
	_, ok := p.retained[e.Key()]
	return ok
}

// removeWhere deletes every non-retained edge matching drop
func (p *pruner) removeWhere(step string, drop func(graph.Edge) bool) (StepStats, error) {
	stats := StepStats{Step: step}
	for _, e := range p.working.Edges() {
		if p.isRetained(e) || !drop(e) {
			continue
		}
		if err := p.working.RemoveEdge(e.Source, e.Target); err != nil {
			return stats, err
		}
		stats.Removed++
	}
	stats.Edges = p.working.EdgeCount()
	return stats, nil
}

func (p *pruner) skipped(step string) (StepStats, error) {
	return StepStats{Step: step, Skipped: true, Edges: p.working.EdgeCount()}, nil
}

// positiveObservations drops edges observed fewer times than the threshold
// fraction of all traces. It runs before retention, so nothing is exempt yet.
func (p *pruner) positiveObservations() (StepStats, error) {
	if !p.config.PositiveObservationsEnabled() {
		return p.skipped(StepPositiveObservations)
	}
	floor := p.config.PositiveObservations * float64(p.origin.TraceCount())
	return p.removeWhere(StepPositiveObservations, func(e graph.Edge) bool {
		return float64(e.Frequency) < floor
	})
}

// bestRetention marks every node's best outgoing and best incoming edge.
// Self-loops never count as a node's best connection.
func (p *pruner) bestRetention() (StepStats, error) {
	p.bestOut = make(map[int]graph.Edge)
	bestIn := make(map[int]graph.Edge)

	for _, e := range p.working.Edges() {
		if e.Key().IsLoop() {
			continue
		}
		if cur, ok := p.bestOut[e.Source]; !ok || p.better(e, cur, target) {
			p.bestOut[e.Source] = e
		}
		if cur, ok := bestIn[e.Target]; !ok || p.better(e, cur, source) {
			bestIn[e.Target] = e
		}
	}

	p.retained = make(map[graph.EdgeKey]struct{}, len(p.bestOut)+len(bestIn))
	for _, e := range p.bestOut {
		p.retained[e.Key()] = struct{}{}
	}
	for _, e := range bestIn {
		p.retained[e.Key()] = struct{}{}
	}

	return StepStats{
		Step:  StepBestRetention,
		Kept:  len(p.retained),
		Edges: p.working.EdgeCount(),
	}, nil
}

// relativeToBest drops outgoing edges whose dependency trails the node's
// best outgoing dependency by more than the threshold
func (p *pruner) relativeToBest() (StepStats, error) {
	if !p.config.RelativeToBestEnabled() {
		return p.skipped(StepRelativeToBest)
	}
	return p.removeWhere(StepRelativeToBest, func(e graph.Edge) bool {
		best, ok := p.bestOut[e.Source]
		if !ok {
			return false
		}
		return p.dependency(best)-p.dependency(e) > p.config.RelativeToBest
	})
}

func (p *pruner) dependencyThreshold() (StepStats, error) {
	return p.removeWhere(StepDependencyThreshold, func(e graph.Edge) bool {
		return p.dependency(e) < p.config.DependencyThreshold
	})
}

func (p *pruner) retainedKeys() []graph.EdgeKey {
	keys := make([]graph.EdgeKey, 0, len(p.retained))
	for k := range p.retained {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}
