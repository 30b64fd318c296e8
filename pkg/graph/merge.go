package graph

import "github.com/google/uuid"

// Clone returns a deep copy with a fresh identity. Node indices are preserved.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := &Graph{
		nodes:    make([]Node, len(g.nodes)),
		byLabel:  make(map[string]int, len(g.byLabel)),
		edges:    make(map[EdgeKey]*Edge, len(g.edges)),
		outgoing: make([]map[int]*Edge, len(g.nodes)),
		incoming: make([]map[int]*Edge, len(g.nodes)),
		traces:   g.traces,
		starts:   make(map[int]int, len(g.starts)),
		ends:     make(map[int]int, len(g.ends)),
		id:       uuid.New(),
		version:  g.version,
	}

	copy(clone.nodes, g.nodes)
	for label, idx := range g.byLabel {
		clone.byLabel[label] = idx
	}
	for i := range g.nodes {
		clone.outgoing[i] = make(map[int]*Edge, len(g.outgoing[i]))
		clone.incoming[i] = make(map[int]*Edge, len(g.incoming[i]))
	}
	for key, edge := range g.edges {
		e := *edge
		clone.edges[key] = &e
		clone.outgoing[key.Source][key.Target] = &e
		clone.incoming[key.Target][key.Source] = &e
	}
	for idx, n := range g.starts {
		clone.starts[idx] = n
	}
	for idx, n := range g.ends {
		clone.ends[idx] = n
	}
	return clone
}

// Merge folds other into g by label: unseen labels are appended in other's
// index order, edge frequencies and trace observations are summed.
// Merging partial graphs in the order their traces appeared reproduces the
// node numbering of a single sequential build.
// other is copied under its own read lock before g is locked, so the two
// locks are never held together.
func (g *Graph) Merge(other *Graph) error {
	if other == g {
		return NewError("Merge").Context("graph merged into itself").Cause(ErrInvalidNodeReference).Err()
	}

	other = other.Clone()
	g.mu.Lock()
	defer g.mu.Unlock()

	mapping := make([]int, len(other.nodes))
	for i, node := range other.nodes {
		mapping[i] = g.addNodeLocked(node.Label)
	}

	// Walk other's adjacency in index order so edge creation order is stable
	for src := range other.nodes {
		for _, edge := range collectEdges(other.outgoing[src], func(e Edge) int { return e.Target }) {
			if err := g.addOrIncrementLocked("Merge", mapping[edge.Source], mapping[edge.Target], edge.Frequency); err != nil {
				return err
			}
			if edge.Capabilities.Has(CapLabel) {
				merged := g.edges[EdgeKey{Source: mapping[edge.Source], Target: mapping[edge.Target]}]
				if merged.Label == "" {
					merged.Label = edge.Label
					merged.Capabilities |= CapLabel
				}
			}
		}
	}

	g.traces += other.traces
	for idx, n := range other.starts {
		g.starts[mapping[idx]] += n
	}
	for idx, n := range other.ends {
		g.ends[mapping[idx]] += n
	}
	g.version++
	return nil
}
