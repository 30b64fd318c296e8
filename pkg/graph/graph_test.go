package graph

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestAddNode_DenseIndices tests index allocation and reuse of known labels
func TestAddNode_DenseIndices(t *testing.T) {
	g := New()

	a := g.AddNode("A")
	b := g.AddNode("B")
	again := g.AddNode("A")

	if a != 0 || b != 1 {
		t.Errorf("Expected indices 0 and 1, got %d and %d", a, b)
	}
	if again != a {
		t.Errorf("Expected existing index %d for known label, got %d", a, again)
	}
	if g.NodeCount() != 2 {
		t.Errorf("Expected 2 nodes, got %d", g.NodeCount())
	}

	node, err := g.Node(b)
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if node.Label != "B" || node.Index != 1 {
		t.Errorf("Unexpected node %+v", node)
	}
}

// TestAddOrIncrementEdge tests creation and frequency accumulation
func TestAddOrIncrementEdge(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")

	if err := g.AddOrIncrementEdge(a, b, 1); err != nil {
		t.Fatalf("AddOrIncrementEdge failed: %v", err)
	}
	if err := g.AddOrIncrementEdge(a, b, 3); err != nil {
		t.Fatalf("AddOrIncrementEdge failed: %v", err)
	}

	if g.EdgeCount() != 1 {
		t.Errorf("Expected a single edge, got %d", g.EdgeCount())
	}

	edge, err := g.Edge(a, b)
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}
	if edge.Frequency != 4 {
		t.Errorf("Expected frequency 4, got %d", edge.Frequency)
	}
	if !edge.Capabilities.Has(CapFrequency) {
		t.Error("Expected edge to carry the frequency capability")
	}
	if edge.String() != "4" {
		t.Errorf("Expected String() = 4, got %s", edge.String())
	}
	if edge.Describe() != "0 > 1 [4]" {
		t.Errorf("Unexpected Describe() %q", edge.Describe())
	}
}

// TestAddOrIncrementEdge_SelfLoop tests that self-succession is recorded
func TestAddOrIncrementEdge_SelfLoop(t *testing.T) {
	g := New()
	a := g.AddNode("A")

	if err := g.AddOrIncrementEdge(a, a, 2); err != nil {
		t.Fatalf("AddOrIncrementEdge failed: %v", err)
	}

	out, _ := g.OutEdges(a)
	in, _ := g.InEdges(a)
	if len(out) != 1 || len(in) != 1 {
		t.Errorf("Expected the loop in both adjacency lists, got out=%v in=%v", out, in)
	}
	if stats := g.Statistics(); stats.SelfLoops != 1 {
		t.Errorf("Expected 1 self loop, got %d", stats.SelfLoops)
	}
}

// TestInvalidReferences tests that every indexed operation rejects out-of-range input
func TestInvalidReferences(t *testing.T) {
	g := New()
	a := g.AddNode("A")

	checks := map[string]error{
		"AddOrIncrementEdge": g.AddOrIncrementEdge(a, 5, 1),
		"RemoveEdge":         g.RemoveEdge(-1, a),
		"RecordTrace":        g.RecordTrace(a, 3),
		"SetEdgeLabel":       g.SetEdgeLabel(7, a, "x"),
	}
	if _, err := g.Node(1); err != nil {
		checks["Node"] = err
	}
	if _, err := g.OutEdges(9); err != nil {
		checks["OutEdges"] = err
	}
	if _, err := g.InEdges(9); err != nil {
		checks["InEdges"] = err
	}
	if _, err := g.Frequency(a, 2); err != nil {
		checks["Frequency"] = err
	}
	if _, err := g.Edge(2, a); err != nil {
		checks["Edge"] = err
	}

	for op, err := range checks {
		if !IsInvalidReference(err) {
			t.Errorf("%s: expected ErrInvalidNodeReference, got %v", op, err)
		}
	}
	if len(checks) != 9 {
		t.Errorf("Expected 9 failing operations, got %d", len(checks))
	}

	var graphErr *GraphError
	if !errors.As(checks["AddOrIncrementEdge"], &graphErr) {
		t.Fatal("Expected a *GraphError")
	}
	if graphErr.Op != "AddOrIncrementEdge" || graphErr.Entity != "node" || graphErr.Ref != "5" {
		t.Errorf("Unexpected error detail: %+v", graphErr)
	}
}

// TestAddOrIncrementEdge_NegativeAmount tests the amount guard
func TestAddOrIncrementEdge_NegativeAmount(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")

	err := g.AddOrIncrementEdge(a, b, -1)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Error("Rejected increment must not create an edge")
	}
}

// TestEdge_NotFound tests that absent edges are distinguishable from bad indices
func TestEdge_NotFound(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")

	_, err := g.Edge(a, b)
	if !IsNotFound(err) {
		t.Errorf("Expected ErrEdgeNotFound, got %v", err)
	}
	if IsInvalidReference(err) {
		t.Error("Absent edge must not be reported as an invalid reference")
	}

	freq, err := g.Frequency(a, b)
	if err != nil || freq != 0 {
		t.Errorf("Expected frequency 0 without error, got %d, %v", freq, err)
	}
}

// TestRemoveEdge_Idempotent tests removal and repeated removal
func TestRemoveEdge_Idempotent(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")
	g.AddOrIncrementEdge(a, b, 1)

	for i := 0; i < 2; i++ {
		if err := g.RemoveEdge(a, b); err != nil {
			t.Fatalf("RemoveEdge #%d failed: %v", i+1, err)
		}
	}

	if g.HasEdge(a, b) {
		t.Error("Edge still present after removal")
	}
	out, _ := g.OutEdges(a)
	in, _ := g.InEdges(b)
	if len(out) != 0 || len(in) != 0 {
		t.Errorf("Adjacency not updated: out=%v in=%v", out, in)
	}
}

// TestAdjacency_Ordering tests that adjacency lists are sorted by the opposite endpoint
func TestAdjacency_Ordering(t *testing.T) {
	g := New()
	hub := g.AddNode("hub")
	idx := make([]int, 0)
	for _, label := range []string{"d", "c", "b", "a"} {
		idx = append(idx, g.AddNode(label))
	}
	for i := len(idx) - 1; i >= 0; i-- {
		g.AddOrIncrementEdge(hub, idx[i], 1)
		g.AddOrIncrementEdge(idx[i], hub, 1)
	}

	out, _ := g.OutEdges(hub)
	for i := 1; i < len(out); i++ {
		if out[i-1].Target >= out[i].Target {
			t.Errorf("OutEdges not ordered by target: %v", out)
		}
	}
	in, _ := g.InEdges(hub)
	for i := 1; i < len(in); i++ {
		if in[i-1].Source >= in[i].Source {
			t.Errorf("InEdges not ordered by source: %v", in)
		}
	}

	edges := g.Edges()
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		if prev.Source > cur.Source || (prev.Source == cur.Source && prev.Target >= cur.Target) {
			t.Errorf("Edges not ordered: %v before %v", prev, cur)
		}
	}

	adj, stamp := g.Adjacency()
	if stamp != g.Stamp() {
		t.Errorf("Adjacency stamp %s, want %s", stamp, g.Stamp())
	}
	if len(adj) != g.NodeCount() || len(adj[hub]) != len(idx) {
		t.Fatalf("Unexpected adjacency %v", adj)
	}
	for i, e := range out {
		if adj[hub][i] != e.Target {
			t.Errorf("Adjacency %v disagrees with OutEdges %v", adj[hub], out)
		}
	}
}

// TestStamp_Versioning tests that every mutation moves the version forward
func TestStamp_Versioning(t *testing.T) {
	g := New()
	s0 := g.Stamp()

	a := g.AddNode("A")
	s1 := g.Stamp()
	g.AddNode("A")
	if g.Stamp() != s1 {
		t.Error("Re-adding a known label must not change the stamp")
	}

	g.AddOrIncrementEdge(a, a, 1)
	s2 := g.Stamp()
	g.RemoveEdge(a, a)
	s3 := g.Stamp()
	g.RemoveEdge(a, a)
	if g.Stamp() != s3 {
		t.Error("Removing an absent edge must not change the stamp")
	}

	if !(s0.Version < s1.Version && s1.Version < s2.Version && s2.Version < s3.Version) {
		t.Errorf("Expected increasing versions, got %d %d %d %d", s0.Version, s1.Version, s2.Version, s3.Version)
	}
	if s0.ID != s3.ID {
		t.Error("Graph identity must be stable across mutations")
	}
}

// TestTraceObservations tests start/end bookkeeping
func TestTraceObservations(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")
	c := g.AddNode("C")

	g.RecordTrace(a, c)
	g.RecordTrace(a, b)
	g.RecordTrace(b, b)
	g.RecordEmptyTrace()

	if g.TraceCount() != 4 {
		t.Errorf("Expected 4 traces, got %d", g.TraceCount())
	}
	starts := g.StartNodes()
	if len(starts) != 2 || starts[0] != a || starts[1] != b {
		t.Errorf("Unexpected start nodes %v", starts)
	}
	ends := g.EndNodes()
	if len(ends) != 2 || ends[0] != b || ends[1] != c {
		t.Errorf("Unexpected end nodes %v", ends)
	}
	if n, _ := g.StartCount(a); n != 2 {
		t.Errorf("Expected A to start 2 traces, got %d", n)
	}
	if n, _ := g.EndCount(b); n != 2 {
		t.Errorf("Expected B to end 2 traces, got %d", n)
	}
}

// TestClone_Independent tests that a clone shares nothing with its source
func TestClone_Independent(t *testing.T) {
	g := New()
	a := g.AddNode("A")
	b := g.AddNode("B")
	g.AddOrIncrementEdge(a, b, 2)
	g.RecordTrace(a, b)

	clone := g.Clone()
	if clone.Stamp().ID == g.Stamp().ID {
		t.Error("Clone must have its own identity")
	}

	clone.AddOrIncrementEdge(a, b, 5)
	clone.RemoveEdge(a, b)
	clone.AddNode("C")

	if f, _ := g.Frequency(a, b); f != 2 {
		t.Errorf("Source graph mutated through clone, frequency %d", f)
	}
	if g.NodeCount() != 2 {
		t.Errorf("Source graph gained nodes through clone: %d", g.NodeCount())
	}
	if clone.TraceCount() != 1 {
		t.Errorf("Clone lost trace observations")
	}
}

// TestMerge tests label-based frequency summation
func TestMerge(t *testing.T) {
	left := New()
	a := left.AddNode("A")
	b := left.AddNode("B")
	left.AddOrIncrementEdge(a, b, 1)
	left.RecordTrace(a, b)

	right := New()
	c := right.AddNode("C")
	rb := right.AddNode("B")
	ra := right.AddNode("A")
	right.AddOrIncrementEdge(ra, rb, 2)
	right.AddOrIncrementEdge(rb, c, 1)
	right.SetEdgeLabel(rb, c, "handover")
	right.RecordTrace(ra, c)

	if err := left.Merge(right); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if left.NodeCount() != 3 {
		t.Fatalf("Expected 3 nodes, got %d", left.NodeCount())
	}
	ci, _ := left.Lookup("C")
	if ci != 2 {
		t.Errorf("Expected C appended at index 2, got %d", ci)
	}
	if f, _ := left.Frequency(a, b); f != 3 {
		t.Errorf("Expected A->B frequency 3, got %d", f)
	}
	edge, err := left.Edge(b, ci)
	if err != nil || edge.Label != "handover" || !edge.Capabilities.Has(CapLabel) {
		t.Errorf("Expected merged label on B->C, got %+v, %v", edge, err)
	}
	if left.TraceCount() != 2 {
		t.Errorf("Expected 2 traces, got %d", left.TraceCount())
	}
	if n, _ := left.StartCount(a); n != 2 {
		t.Errorf("Expected A to start 2 traces, got %d", n)
	}

	if err := left.Merge(left); !IsInvalidReference(err) {
		t.Errorf("Expected self merge to fail, got %v", err)
	}
}

// TestCompareEdges tests frequency-first ordering
func TestCompareEdges(t *testing.T) {
	tests := []struct {
		name string
		a, b Edge
		want int
	}{
		{"lower frequency first", Edge{Source: 5, Target: 5, Frequency: 1}, Edge{Frequency: 2}, -1},
		{"then source", Edge{Source: 1, Target: 9, Frequency: 2}, Edge{Source: 2, Target: 0, Frequency: 2}, -1},
		{"then target", Edge{Source: 1, Target: 3, Frequency: 2}, Edge{Source: 1, Target: 2, Frequency: 2}, 1},
		{"equal", Edge{Source: 1, Target: 2, Frequency: 2}, Edge{Source: 1, Target: 2, Frequency: 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareEdges(tt.a, tt.b)
			if (got < 0 && tt.want >= 0) || (got > 0 && tt.want <= 0) || (got == 0 && tt.want != 0) {
				t.Errorf("CompareEdges() = %d, want sign of %d", got, tt.want)
			}
		})
	}
}

// TestConcurrentReads tests that readers can share a graph
func TestConcurrentReads(t *testing.T) {
	g := New()
	prev := g.AddNode("n0")
	for i := 1; i < 50; i++ {
		cur := g.AddNode(fmt.Sprintf("n%d", i))
		g.AddOrIncrementEdge(prev, cur, i)
		prev = cur
	}
	before := g.Stamp()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < g.NodeCount(); i++ {
				g.OutEdges(i)
				g.InEdges(i)
			}
			g.Edges()
			g.Statistics()
		}()
	}
	wg.Wait()

	if g.Stamp() != before {
		t.Error("Readers must not change the stamp")
	}
}

// TestMerge_OppositeDirections tests that two graphs can merge into each other concurrently
func TestMerge_OppositeDirections(t *testing.T) {
	left, right := New(), New()
	l0, l1 := left.AddNode("A"), left.AddNode("B")
	left.AddOrIncrementEdge(l0, l1, 1)
	r0, r1 := right.AddNode("B"), right.AddNode("C")
	right.AddOrIncrementEdge(r0, r1, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if err := left.Merge(right); err != nil {
					t.Errorf("left.Merge failed: %v", err)
				}
			}()
			go func() {
				defer wg.Done()
				if err := right.Merge(left); err != nil {
					t.Errorf("right.Merge failed: %v", err)
				}
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Opposite merges did not finish")
	}

	for _, g := range []*Graph{left, right} {
		for _, label := range []string{"A", "B", "C"} {
			if _, ok := g.Lookup(label); !ok {
				t.Errorf("Label %q missing after merges", label)
			}
		}
	}
}
