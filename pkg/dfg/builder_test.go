package dfg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
)

// labelFrequencies flattens a graph into "src>tgt" -> frequency for comparisons across builds
func labelFrequencies(t *testing.T, g *graph.Graph) map[string]int {
	t.Helper()
	nodes := g.Nodes()
	out := make(map[string]int)
	for _, e := range g.Edges() {
		out[nodes[e.Source].Label+">"+nodes[e.Target].Label] = e.Frequency
	}
	return out
}

// TestBuild_Scenario tests the two-trace example from the process map docs
func TestBuild_Scenario(t *testing.T) {
	g, err := Build([]Trace{{"A", "B", "C"}, {"A", "C"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("Expected 3 nodes and 3 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}

	freqs := labelFrequencies(t, g)
	for _, key := range []string{"A>B", "B>C", "A>C"} {
		if freqs[key] != 1 {
			t.Errorf("Expected %s frequency 1, got %d", key, freqs[key])
		}
	}

	a, _ := g.Lookup("A")
	c, _ := g.Lookup("C")
	if starts := g.StartNodes(); len(starts) != 1 || starts[0] != a {
		t.Errorf("Expected A as the only start, got %v", starts)
	}
	if ends := g.EndNodes(); len(ends) != 1 || ends[0] != c {
		t.Errorf("Expected C as the only end, got %v", ends)
	}
	if g.TraceCount() != 2 {
		t.Errorf("Expected 2 traces, got %d", g.TraceCount())
	}
}

// TestBuild_ShortTraces tests that traces of length 0 and 1 add nodes but no edges
func TestBuild_ShortTraces(t *testing.T) {
	g, err := Build([]Trace{{}, {"X"}, {"X"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Errorf("Expected 1 node and no edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if g.TraceCount() != 3 {
		t.Errorf("Expected 3 traces, got %d", g.TraceCount())
	}
	x, _ := g.Lookup("X")
	if n, _ := g.StartCount(x); n != 2 {
		t.Errorf("Expected X to start 2 traces, got %d", n)
	}
}

// TestBuild_EmptyInput tests that no traces yields an empty graph, not an error
func TestBuild_EmptyInput(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("Expected no error for empty input, got %v", err)
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 || g.TraceCount() != 0 {
		t.Errorf("Expected an empty graph, got %+v", g.Statistics())
	}
}

// TestBuild_SelfLoop tests repeated activities
func TestBuild_SelfLoop(t *testing.T) {
	g, _ := Build([]Trace{{"A", "A", "A", "B"}})
	freqs := labelFrequencies(t, g)

	if freqs["A>A"] != 2 {
		t.Errorf("Expected A>A frequency 2, got %d", freqs["A>A"])
	}
	if freqs["A>B"] != 1 {
		t.Errorf("Expected A>B frequency 1, got %d", freqs["A>B"])
	}
}

// TestBuild_ArtificialEndpoints tests trace bracketing
func TestBuild_ArtificialEndpoints(t *testing.T) {
	g, err := Build(
		[]Trace{{"A", "B"}, {"B"}, {}},
		WithArtificialEndpoints(DefaultStartLabel, DefaultEndLabel),
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	start, _ := g.Lookup(DefaultStartLabel)
	end, _ := g.Lookup(DefaultEndLabel)
	if start != 0 || end != 1 {
		t.Errorf("Expected endpoints at indices 0 and 1, got %d and %d", start, end)
	}

	freqs := labelFrequencies(t, g)
	want := map[string]int{
		"|>>A":  1,
		"A>B":   1,
		"B>[]":  2,
		"|>>B":  1,
		"|>>[]": 1,
	}
	for key, n := range want {
		if freqs[key] != n {
			t.Errorf("Expected %s frequency %d, got %d", key, n, freqs[key])
		}
	}
	if starts := g.StartNodes(); len(starts) != 1 || starts[0] != start {
		t.Errorf("Expected the artificial start as the only start, got %v", starts)
	}
	if ends := g.EndNodes(); len(ends) != 1 || ends[0] != end {
		t.Errorf("Expected the artificial end as the only end, got %v", ends)
	}
}

// TestBuilder_Pairs tests the observation counter
func TestBuilder_Pairs(t *testing.T) {
	b := NewBuilder()
	if err := b.AddTraces([]Trace{{"A", "B", "C"}, {"A"}, {}}); err != nil {
		t.Fatalf("AddTraces failed: %v", err)
	}
	if b.Pairs() != 2 {
		t.Errorf("Expected 2 pairs, got %d", b.Pairs())
	}
	if b.Graph().Statistics().TotalFrequency != 2 {
		t.Errorf("Expected total frequency 2, got %d", b.Graph().Statistics().TotalFrequency)
	}
}

func syntheticTraces(n int) []Trace {
	alphabet := []string{"register", "check", "approve", "reject", "notify", "archive"}
	traces := make([]Trace, n)
	for i := range traces {
		length := 1 + (i*7)%6
		tr := make(Trace, length)
		for j := range tr {
			tr[j] = alphabet[(i+j*j)%len(alphabet)]
		}
		traces[i] = tr
	}
	return traces
}

// TestBuildParallel_MatchesSequential tests that partitioned builds are indistinguishable
func TestBuildParallel_MatchesSequential(t *testing.T) {
	traces := syntheticTraces(500)

	for _, workers := range []int{0, 1, 2, 3, 8, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			seq, err := Build(traces, WithArtificialEndpoints("start", "end"))
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			par, err := BuildParallel(context.Background(), traces, workers, WithArtificialEndpoints("start", "end"))
			if err != nil {
				t.Fatalf("BuildParallel failed: %v", err)
			}

			seqNodes, parNodes := seq.Nodes(), par.Nodes()
			if len(seqNodes) != len(parNodes) {
				t.Fatalf("Node count differs: %d vs %d", len(seqNodes), len(parNodes))
			}
			for i := range seqNodes {
				if seqNodes[i] != parNodes[i] {
					t.Errorf("Node %d differs: %+v vs %+v", i, seqNodes[i], parNodes[i])
				}
			}

			seqEdges, parEdges := seq.Edges(), par.Edges()
			if len(seqEdges) != len(parEdges) {
				t.Fatalf("Edge count differs: %d vs %d", len(seqEdges), len(parEdges))
			}
			for i := range seqEdges {
				if seqEdges[i] != parEdges[i] {
					t.Errorf("Edge %d differs: %+v vs %+v", i, seqEdges[i], parEdges[i])
				}
			}

			if seq.TraceCount() != par.TraceCount() {
				t.Errorf("Trace count differs: %d vs %d", seq.TraceCount(), par.TraceCount())
			}
			for i := range seqNodes {
				s1, _ := seq.StartCount(i)
				s2, _ := par.StartCount(i)
				e1, _ := seq.EndCount(i)
				e2, _ := par.EndCount(i)
				if s1 != s2 || e1 != e2 {
					t.Errorf("Node %d start/end counts differ", i)
				}
			}
		})
	}
}

// TestBuildParallel_Cancelled tests that a cancelled context aborts the build
func TestBuildParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildParallel(ctx, syntheticTraces(100), 4)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestPartition tests chunk boundaries
func TestPartition(t *testing.T) {
	spans := partition(10, 3)
	want := []span{{0, 4}, {4, 7}, {7, 10}}
	if len(spans) != len(want) {
		t.Fatalf("Expected %d spans, got %v", len(want), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("Span %d = %v, want %v", i, spans[i], want[i])
		}
	}
	if partition(0, 4) != nil {
		t.Error("Expected no spans for no items")
	}
	if got := partition(2, 5); len(got) != 2 {
		t.Errorf("Expected parts capped at item count, got %v", got)
	}
}

// TestBuildProperties checks frequency accounting and order independence on random logs
func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	alphabet := []string{"a", "b", "c", "d", "e"}
	activity := gen.IntRange(0, len(alphabet)-1).Map(func(i int) string { return alphabet[i] })
	traceGen := gen.SliceOf(activity)
	logGen := gen.SliceOf(traceGen)

	toTraces := func(raw [][]string) []Trace {
		traces := make([]Trace, len(raw))
		for i, r := range raw {
			traces[i] = Trace(r)
		}
		return traces
	}

	properties.Property("total frequency equals consecutive pairs", prop.ForAll(
		func(raw [][]string) bool {
			g, err := Build(toTraces(raw))
			if err != nil {
				return false
			}
			want := 0
			for _, r := range raw {
				if len(r) > 1 {
					want += len(r) - 1
				}
			}
			return g.Statistics().TotalFrequency == want
		},
		logGen,
	))

	properties.Property("trace order does not change frequencies", prop.ForAll(
		func(raw [][]string) bool {
			traces := toTraces(raw)
			reversed := make([]Trace, len(traces))
			for i, tr := range traces {
				reversed[len(traces)-1-i] = tr
			}
			g1, err1 := Build(traces)
			g2, err2 := Build(reversed)
			if err1 != nil || err2 != nil {
				return false
			}
			f1, f2 := labelFrequencies(t, g1), labelFrequencies(t, g2)
			if len(f1) != len(f2) {
				return false
			}
			for k, v := range f1 {
				if f2[k] != v {
					return false
				}
			}
			return true
		},
		logGen,
	))

	properties.TestingRun(t)
}
