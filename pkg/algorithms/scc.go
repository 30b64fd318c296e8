package algorithms

import (
	"sort"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// SCCResult holds the strongly connected components of a graph. In a
// process map a component with more than one node is a loop region:
// every activity in it can be revisited from every other.
type SCCResult struct {
	Components     [][]int // members ascending, components ordered by lowest member
	NodeComponent  []int   // node index -> component index
	Largest        int     // index into Components, -1 for an empty graph
	SingletonCount int
	stamp          graph.Stamp
}

// CondensationEdge is an aggregated edge between two components
type CondensationEdge struct {
	From      int
	To        int
	EdgeCount int
	Frequency int
}

// tarjanState holds per-node state during Tarjan's DFS.
type tarjanState struct {
	index   int
	lowlink int
	onStack bool
	visited bool
}

// StronglyConnectedComponents finds all components using Tarjan's algorithm in O(V+E) time.
// Only outgoing edges are followed.
func StronglyConnectedComponents(g *graph.Graph) *SCCResult {
	adj, stamp := g.Adjacency()
	n := len(adj)

	state := make([]tarjanState, n)
	var stack []int
	indexCounter := 0
	var components [][]int

	var strongconnect func(u int)
	strongconnect = func(u int) {
		state[u] = tarjanState{index: indexCounter, lowlink: indexCounter, onStack: true, visited: true}
		indexCounter++
		stack = append(stack, u)

		for _, v := range adj[u] {
			if !state[v].visited {
				strongconnect(v)
				state[u].lowlink = min(state[u].lowlink, state[v].lowlink)
			} else if state[v].onStack {
				state[u].lowlink = min(state[u].lowlink, state[v].index)
			}
		}

		// u is a root: pop its component
		if state[u].lowlink == state[u].index {
			var members []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				members = append(members, w)
				if w == u {
					break
				}
			}
			sort.Ints(members)
			components = append(components, members)
		}
	}

	for u := 0; u < n; u++ {
		if !state[u].visited {
			strongconnect(u)
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	result := &SCCResult{
		Components:    components,
		NodeComponent: make([]int, n),
		Largest:       -1,
		stamp:         stamp,
	}
	for id, members := range components {
		for _, node := range members {
			result.NodeComponent[node] = id
		}
		if len(members) == 1 {
			result.SingletonCount++
		}
		if result.Largest == -1 || len(members) > len(components[result.Largest]) {
			result.Largest = id
		}
	}
	return result
}

// LoopRegions returns the components with more than one member
func (r *SCCResult) LoopRegions() [][]int {
	var out [][]int
	for _, members := range r.Components {
		if len(members) > 1 {
			out = append(out, members)
		}
	}
	return out
}

// Stamp identifies the graph version the result was computed from
func (r *SCCResult) Stamp() graph.Stamp {
	return r.stamp
}

// Condensation contracts every component of r to a single node and
// aggregates the edges between components, ordered by From then To.
func Condensation(g *graph.Graph, r *SCCResult) []CondensationEdge {
	type key struct{ from, to int }
	agg := make(map[key]*CondensationEdge)

	for _, e := range g.Edges() {
		if e.Source >= len(r.NodeComponent) || e.Target >= len(r.NodeComponent) {
			continue
		}
		from, to := r.NodeComponent[e.Source], r.NodeComponent[e.Target]
		if from == to {
			continue // intra-component edge
		}
		k := key{from, to}
		ce, ok := agg[k]
		if !ok {
			ce = &CondensationEdge{From: from, To: to}
			agg[k] = ce
		}
		ce.EdgeCount++
		ce.Frequency += e.Frequency
	}

	out := make([]CondensationEdge, 0, len(agg))
	for _, ce := range agg {
		out = append(out, *ce)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
