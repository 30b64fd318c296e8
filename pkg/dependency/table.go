package dependency

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// ErrGraphChanged is returned when the graph was mutated while a table was being computed
var ErrGraphChanged = errors.New("graph changed during dependency computation")

// Table holds precomputed scores for every ordered pair with at least one
// observed direction, keyed to the graph version it was computed from
type Table struct {
	stamp  graph.Stamp
	scores map[graph.EdgeKey]Score
}

// Compute materializes the scores of every observed pair of g
func Compute(g *graph.Graph) (*Table, error) {
	before := g.Stamp()
	edges := g.Edges()

	freq := make(map[graph.EdgeKey]int, len(edges))
	for _, e := range edges {
		freq[e.Key()] = e.Frequency
	}

	t := &Table{
		stamp:  before,
		scores: make(map[graph.EdgeKey]Score, 2*len(edges)),
	}
	for key, f := range freq {
		if key.IsLoop() {
			t.put(key, selfLoop(f))
			continue
		}
		back := freq[key.Reverse()]
		t.put(key, pair(f, back))
		if back == 0 {
			t.put(key.Reverse(), pair(0, f))
		}
	}

	if after := g.Stamp(); after != before {
		return nil, fmt.Errorf("%w: %s became %s", ErrGraphChanged, before, after)
	}
	return t, nil
}

// put stores s unless neither direction has a positive frequency, which
// happens for edges created with a zero amount
func (t *Table) put(key graph.EdgeKey, s Score) {
	if s.Observed {
		t.scores[key] = s
	}
}

// Lookup returns the score for a->b; ok is false when neither direction was observed
func (t *Table) Lookup(a, b int) (float64, bool) {
	s, ok := t.scores[graph.EdgeKey{Source: a, Target: b}]
	return s.Value, ok
}

// Score returns the full score for a->b; ok is false when neither direction was observed
func (t *Table) Score(a, b int) (Score, bool) {
	s, ok := t.scores[graph.EdgeKey{Source: a, Target: b}]
	return s, ok
}

// Len returns the number of scored ordered pairs
func (t *Table) Len() int {
	return len(t.scores)
}

// Stamp identifies the graph version the table was computed from
func (t *Table) Stamp() graph.Stamp {
	return t.stamp
}

// ValidFor reports whether the table still describes g
func (t *Table) ValidFor(g *graph.Graph) bool {
	return g != nil && t.stamp == g.Stamp()
}
