package filter

import (
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// endpoints resolves the start and end node sets of g. Configured labels
// win; otherwise the nodes that began or finished traces; otherwise nodes
// with no incoming (outgoing) edges besides self-loops; otherwise node 0.
func (f *Filter) endpoints(g *graph.Graph) (starts, ends []int, err error) {
	if g.NodeCount() == 0 {
		return nil, nil, nil
	}
	starts, err = endpointSet(g, f.config.StartActivities, g.StartNodes, (*graph.Graph).InEdges)
	if err != nil {
		return nil, nil, fmt.Errorf("start activities: %w", err)
	}
	ends, err = endpointSet(g, f.config.EndActivities, g.EndNodes, (*graph.Graph).OutEdges)
	if err != nil {
		return nil, nil, fmt.Errorf("end activities: %w", err)
	}
	return starts, ends, nil
}

func endpointSet(
	g *graph.Graph,
	labels []string,
	observed func() []int,
	adjacent func(*graph.Graph, int) ([]graph.Edge, error),
) ([]int, error) {
	if len(labels) > 0 {
		out := make([]int, 0, len(labels))
		for _, label := range labels {
			i, ok := g.Lookup(label)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, label)
			}
			out = append(out, i)
		}
		return out, nil
	}

	if nodes := observed(); len(nodes) > 0 {
		return nodes, nil
	}

	var out []int
	for i := 0; i < g.NodeCount(); i++ {
		edges, err := adjacent(g, i)
		if err != nil {
			return nil, err
		}
		open := true
		for _, e := range edges {
			if !e.Key().IsLoop() {
				open = false
				break
			}
		}
		if open {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		out = []int{0}
	}
	return out, nil
}
