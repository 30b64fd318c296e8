package graph

import "sort"

// Trace-level observations: how many traces were folded into the graph and
// which nodes opened or closed them.

// RecordTrace counts one non-empty trace that began at first and ended at last
func (g *Graph) RecordTrace(first, last int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkIndex("RecordTrace", first); err != nil {
		return err
	}
	if err := g.checkIndex("RecordTrace", last); err != nil {
		return err
	}

	g.traces++
	g.starts[first]++
	g.ends[last]++
	g.version++
	return nil
}

// RecordEmptyTrace counts a trace with no events
func (g *Graph) RecordEmptyTrace() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.traces++
	g.version++
}

// TraceCount returns the number of traces recorded
func (g *Graph) TraceCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.traces
}

// StartCount returns how many traces began at index
func (g *Graph) StartCount(index int) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("StartCount", index); err != nil {
		return 0, err
	}
	return g.starts[index], nil
}

// EndCount returns how many traces ended at index
func (g *Graph) EndCount(index int) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.checkIndex("EndCount", index); err != nil {
		return 0, err
	}
	return g.ends[index], nil
}

// StartNodes returns the indices that began at least one trace, ascending
func (g *Graph) StartNodes() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.starts)
}

// EndNodes returns the indices that ended at least one trace, ascending
func (g *Graph) EndNodes() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.ends)
}

func sortedKeys(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for k, n := range m {
		if n > 0 {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}
