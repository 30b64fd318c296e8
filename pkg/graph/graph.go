package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Graph is an in-memory directed graph of activities.
// Readers may run concurrently; every mutation bumps the version so
// artifacts derived from an older stamp can be detected as stale.
type Graph struct {
	// Core data structures
	nodes   []Node
	byLabel map[string]int
	edges   map[EdgeKey]*Edge

	// Adjacency: node index -> opposite endpoint -> edge
	outgoing []map[int]*Edge
	incoming []map[int]*Edge

	// Trace-level observations
	traces int
	starts map[int]int
	ends   map[int]int

	id      uuid.UUID
	version uint64
	mu      sync.RWMutex
}

// New creates an empty graph with a fresh identity
func New() *Graph {
	return &Graph{
		nodes:   make([]Node, 0),
		byLabel: make(map[string]int),
		edges:   make(map[EdgeKey]*Edge),
		starts:  make(map[int]int),
		ends:    make(map[int]int),
		id:      uuid.New(),
	}
}

// checkIndex must be called with mu held
func (g *Graph) checkIndex(op string, index int) error {
	if index < 0 || index >= len(g.nodes) {
		return InvalidNodeError(op, index, len(g.nodes))
	}
	return nil
}

// AddNode returns the index of label, allocating the next dense index on first sight
func (g *Graph) AddNode(label string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addNodeLocked(label)
}

func (g *Graph) addNodeLocked(label string) int {
	if idx, exists := g.byLabel[label]; exists {
		return idx
	}

	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Label: label})
	g.byLabel[label] = idx
	g.outgoing = append(g.outgoing, make(map[int]*Edge))
	g.incoming = append(g.incoming, make(map[int]*Edge))
	g.version++
	return idx
}

// Node returns the node at index
func (g *Graph) Node(index int) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("Node", index); err != nil {
		return Node{}, err
	}
	return g.nodes[index], nil
}

// Lookup returns the index of label, if present
func (g *Graph) Lookup(label string) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.byLabel[label]
	return idx, ok
}

// Nodes returns a copy of all nodes in index order
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// AddOrIncrementEdge creates source->target with the given frequency,
// or adds amount to the existing edge's frequency
func (g *Graph) AddOrIncrementEdge(source, target, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addOrIncrementLocked("AddOrIncrementEdge", source, target, amount)
}

func (g *Graph) addOrIncrementLocked(op string, source, target, amount int) error {
	if err := g.checkIndex(op, source); err != nil {
		return err
	}
	if err := g.checkIndex(op, target); err != nil {
		return err
	}
	if amount < 0 {
		return NewError(op).
			Edge(source, target).
			Context(fmt.Sprintf("amount %d", amount)).
			Cause(ErrInvalidAmount).
			Err()
	}

	key := EdgeKey{Source: source, Target: target}
	if edge, exists := g.edges[key]; exists {
		edge.Frequency += amount
		g.version++
		return nil
	}

	edge := &Edge{
		Source:       source,
		Target:       target,
		Frequency:    amount,
		Capabilities: CapFrequency,
	}
	g.edges[key] = edge
	g.outgoing[source][target] = edge
	g.incoming[target][source] = edge
	g.version++
	return nil
}

// SetEdgeLabel attaches a display label to an existing edge
func (g *Graph) SetEdgeLabel(source, target int, label string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkIndex("SetEdgeLabel", source); err != nil {
		return err
	}
	if err := g.checkIndex("SetEdgeLabel", target); err != nil {
		return err
	}

	edge, exists := g.edges[EdgeKey{Source: source, Target: target}]
	if !exists {
		return NewError("SetEdgeLabel").Edge(source, target).Cause(ErrEdgeNotFound).Err()
	}
	edge.Label = label
	if label == "" {
		edge.Capabilities &^= CapLabel
	} else {
		edge.Capabilities |= CapLabel
	}
	g.version++
	return nil
}

// Edge returns a copy of the edge source->target
func (g *Graph) Edge(source, target int) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("Edge", source); err != nil {
		return Edge{}, err
	}
	if err := g.checkIndex("Edge", target); err != nil {
		return Edge{}, err
	}

	edge, exists := g.edges[EdgeKey{Source: source, Target: target}]
	if !exists {
		return Edge{}, EdgeNotFoundError(source, target)
	}
	return *edge, nil
}

// HasEdge reports whether source->target exists. Out-of-range indices report false.
func (g *Graph) HasEdge(source, target int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.edges[EdgeKey{Source: source, Target: target}]
	return exists
}

// Frequency returns the frequency of source->target, 0 if the edge is absent
func (g *Graph) Frequency(source, target int) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("Frequency", source); err != nil {
		return 0, err
	}
	if err := g.checkIndex("Frequency", target); err != nil {
		return 0, err
	}

	if edge, exists := g.edges[EdgeKey{Source: source, Target: target}]; exists {
		return edge.Frequency, nil
	}
	return 0, nil
}

// OutEdges returns the edges leaving index, ordered by target
func (g *Graph) OutEdges(index int) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("OutEdges", index); err != nil {
		return nil, err
	}
	return collectEdges(g.outgoing[index], func(e Edge) int { return e.Target }), nil
}

// InEdges returns the edges entering index, ordered by source
func (g *Graph) InEdges(index int) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("InEdges", index); err != nil {
		return nil, err
	}
	return collectEdges(g.incoming[index], func(e Edge) int { return e.Source }), nil
}

func collectEdges(adj map[int]*Edge, by func(Edge) int) []Edge {
	out := make([]Edge, 0, len(adj))
	for _, edge := range adj {
		out = append(out, *edge)
	}
	sort.Slice(out, func(i, j int) bool { return by(out[i]) < by(out[j]) })
	return out
}

// Adjacency returns every node's successors in ascending order, together with
// the stamp of the version they were read from
func (g *Graph) Adjacency() ([][]int, Stamp) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj := make([][]int, len(g.nodes))
	for i, out := range g.outgoing {
		succ := make([]int, 0, len(out))
		for target := range out {
			succ = append(succ, target)
		}
		sort.Ints(succ)
		adj[i] = succ
	}
	return adj, Stamp{ID: g.id, Version: g.version}
}

// Edges returns a copy of every edge ordered by source, then target
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		out = append(out, *edge)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// RemoveEdge deletes source->target. Removing an absent edge is a no-op.
func (g *Graph) RemoveEdge(source, target int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkIndex("RemoveEdge", source); err != nil {
		return err
	}
	if err := g.checkIndex("RemoveEdge", target); err != nil {
		return err
	}

	key := EdgeKey{Source: source, Target: target}
	if _, exists := g.edges[key]; !exists {
		return nil
	}
	delete(g.edges, key)
	delete(g.outgoing[source], target)
	delete(g.incoming[target], source)
	g.version++
	return nil
}

// Stamp returns the graph's identity and current version
func (g *Graph) Stamp() Stamp {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stamp{ID: g.id, Version: g.version}
}

// Statistics returns summary counts
func (g *Graph) Statistics() Statistics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := Statistics{
		NodeCount:  len(g.nodes),
		EdgeCount:  len(g.edges),
		TraceCount: g.traces,
		Version:    g.version,
	}
	for key, edge := range g.edges {
		stats.TotalFrequency += edge.Frequency
		if key.IsLoop() {
			stats.SelfLoops++
		}
	}
	return stats
}
