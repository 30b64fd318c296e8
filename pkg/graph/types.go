package graph

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Capability tags what optional data an Edge carries.
type Capability uint8

const (
	// CapFrequency marks an edge that counts direct-succession observations
	CapFrequency Capability = 1 << iota
	// CapLabel marks an edge that carries a display label
	CapLabel
)

// Has reports whether all bits of c are set.
func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}

// Node is one distinct activity label observed in the log
type Node struct {
	Index int
	Label string
}

// EdgeKey identifies an edge by its ordered endpoints
type EdgeKey struct {
	Source int
	Target int
}

// String renders the key as "source->target"
func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.Source, k.Target)
}

// Reverse returns the key of the opposite direction
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{Source: k.Target, Target: k.Source}
}

// IsLoop reports whether the edge starts and ends at the same node
func (k EdgeKey) IsLoop() bool {
	return k.Source == k.Target
}

// Edge is a directed relation between two nodes.
// Frequency is meaningful only when Capabilities has CapFrequency.
type Edge struct {
	Source       int
	Target       int
	Frequency    int
	Label        string
	Capabilities Capability
}

// Key returns the edge's ordered endpoints
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target}
}

// String returns the frequency, matching how edges are printed on process maps
func (e Edge) String() string {
	return strconv.Itoa(e.Frequency)
}

// Describe prints "source > target [frequency]"
func (e Edge) Describe() string {
	return fmt.Sprintf("%d > %d [%d]", e.Source, e.Target, e.Frequency)
}

// CompareEdges orders edges by frequency, then source, then target.
// It returns a negative number when a sorts before b.
func CompareEdges(a, b Edge) int {
	if a.Frequency != b.Frequency {
		return a.Frequency - b.Frequency
	}
	if a.Source != b.Source {
		return a.Source - b.Source
	}
	return a.Target - b.Target
}

// Stamp identifies one graph instance at one point of its mutation history.
// Derived artifacts record the stamp they were computed from.
type Stamp struct {
	ID      uuid.UUID
	Version uint64
}

// String renders the stamp as "id@version"
func (s Stamp) String() string {
	return fmt.Sprintf("%s@%d", s.ID, s.Version)
}

// Statistics summarises a graph
type Statistics struct {
	NodeCount      int
	EdgeCount      int
	TotalFrequency int
	SelfLoops      int
	TraceCount     int
	Version        uint64
}
