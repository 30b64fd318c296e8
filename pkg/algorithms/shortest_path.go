package algorithms

import (
	"strconv"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// noPredecessor marks a node with no predecessor on any shortest path
const noPredecessor = -1

// PathLength is a hop count or the explicit absence of a path
type PathLength struct {
	hops      int
	reachable bool
}

// NoPath is the length between nodes with no connecting path
var NoPath = PathLength{}

// Hops returns a reachable length of n edges
func Hops(n int) PathLength {
	return PathLength{hops: n, reachable: true}
}

// Hops returns the number of edges and whether a path exists at all
func (p PathLength) Hops() (int, bool) {
	return p.hops, p.reachable
}

// Reachable reports whether a path exists
func (p PathLength) Reachable() bool {
	return p.reachable
}

func (p PathLength) String() string {
	if !p.reachable {
		return "unreachable"
	}
	return strconv.Itoa(p.hops)
}

// ShortestPathTree holds the distances and predecessors from one source
type ShortestPathTree struct {
	Source       int
	Distances    []PathLength
	Predecessors []int // noPredecessor for the source and unreached nodes
	stamp        graph.Stamp
}

// SingleSource runs Dijkstra with unit edge weights from src
func SingleSource(g *graph.Graph, src int) (*ShortestPathTree, error) {
	adj, stamp := g.Adjacency()
	if src < 0 || src >= len(adj) {
		return nil, graph.InvalidNodeError("SingleSource", src, len(adj))
	}
	tree := dijkstra(adj, src)
	tree.stamp = stamp
	return tree, nil
}

// dijkstra extracts the closest unsettled node by linear scan; equal
// distances resolve to the lowest index. Nodes never reached are never
// extracted, so the loop stops once the frontier is empty.
func dijkstra(adj [][]int, src int) *ShortestPathTree {
	n := len(adj)
	dist := make([]int, n)
	pred := make([]int, n)
	reached := make([]bool, n)
	settled := make([]bool, n)
	for i := range pred {
		pred[i] = noPredecessor
	}
	dist[src] = 0
	reached[src] = true

	for {
		u := -1
		for i := 0; i < n; i++ {
			if !reached[i] || settled[i] {
				continue
			}
			if u == -1 || dist[i] < dist[u] {
				u = i
			}
		}
		if u == -1 {
			break
		}
		settled[u] = true

		for _, v := range adj[u] {
			if settled[v] {
				continue
			}
			if alt := dist[u] + 1; !reached[v] || alt < dist[v] {
				dist[v] = alt
				pred[v] = u
				reached[v] = true
			}
		}
	}

	tree := &ShortestPathTree{
		Source:       src,
		Distances:    make([]PathLength, n),
		Predecessors: pred,
	}
	for i := 0; i < n; i++ {
		if reached[i] {
			tree.Distances[i] = Hops(dist[i])
		}
	}
	return tree
}

// Distance returns the length from the tree's source to target
func (t *ShortestPathTree) Distance(target int) (PathLength, error) {
	if target < 0 || target >= len(t.Distances) {
		return NoPath, graph.InvalidNodeError("Distance", target, len(t.Distances))
	}
	return t.Distances[target], nil
}

// PathTo returns the node sequence from the source to target, or nil if
// target is unreachable
func (t *ShortestPathTree) PathTo(target int) ([]int, error) {
	if target < 0 || target >= len(t.Distances) {
		return nil, graph.InvalidNodeError("PathTo", target, len(t.Distances))
	}
	if !t.Distances[target].Reachable() {
		return nil, nil
	}

	path := make([]int, 0)
	for node := target; node != noPredecessor; node = t.Predecessors[node] {
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Stamp identifies the graph version the tree was computed from
func (t *ShortestPathTree) Stamp() graph.Stamp {
	return t.stamp
}
