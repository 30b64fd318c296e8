// Package dependency scores how strongly one activity causally follows another.
//
// For distinct activities a and b the score is
//
//	(f(a->b) - f(b->a)) / (f(a->b) + f(b->a) + 1)
//
// and for a self-loop it is f(a->a) / (f(a->a) + 1), where f is the
// directly-follows frequency. Scores lie strictly inside (-1, 1).
package dependency

import (
	"fmt"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// Score is the dependency between an ordered pair of nodes together with the
// frequencies it was derived from
type Score struct {
	Value    float64
	Forward  int // f(a->b)
	Backward int // f(b->a); equals Forward for self-loops
	Observed bool
}

// Model computes dependency scores on demand from a graph
type Model struct {
	g *graph.Graph
}

// NewModel creates a model over g
func NewModel(g *graph.Graph) *Model {
	return &Model{g: g}
}

// Dependency returns the score for a->b. When neither direction was ever
// observed the result has Observed false and Value 0.
func (m *Model) Dependency(a, b int) (Score, error) {
	forward, err := m.g.Frequency(a, b)
	if err != nil {
		return Score{}, fmt.Errorf("dependency %d->%d: %w", a, b, err)
	}
	if a == b {
		return selfLoop(forward), nil
	}
	backward, err := m.g.Frequency(b, a)
	if err != nil {
		return Score{}, fmt.Errorf("dependency %d->%d: %w", a, b, err)
	}
	return pair(forward, backward), nil
}

// Value returns only the numeric score for a->b
func (m *Model) Value(a, b int) (float64, error) {
	s, err := m.Dependency(a, b)
	if err != nil {
		return 0, err
	}
	return s.Value, nil
}

func pair(forward, backward int) Score {
	f, b := float64(forward), float64(backward)
	return Score{
		Value:    (f - b) / (f + b + 1),
		Forward:  forward,
		Backward: backward,
		Observed: forward > 0 || backward > 0,
	}
}

func selfLoop(freq int) Score {
	f := float64(freq)
	return Score{
		Value:    f / (f + 1),
		Forward:  freq,
		Backward: freq,
		Observed: freq > 0,
	}
}
