package dfg

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-dfg/pkg/graph"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/parallel"
)

// cancelCheckInterval is how many traces a partition folds between context checks
const cancelCheckInterval = 1024

// BuildParallel partitions traces into contiguous chunks, builds one graph per
// chunk concurrently and merges the partial graphs in chunk order. The result
// has the same labels, indices and frequencies as Build over the same input.
func BuildParallel(ctx context.Context, traces []Trace, workers int, opts ...Option) (*graph.Graph, error) {
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	if workers > len(traces) {
		workers = len(traces)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return Build(traces, opts...)
	}

	result := NewBuilder(opts...)
	logger := result.logger.With(logging.Component("dfg"))
	timer := logging.StartTimer(logger, "dfg built in parallel", logging.Int("workers", workers))

	chunks := partition(len(traces), workers)
	partials := make([]*Builder, len(chunks))
	partOpts := make([]Option, 0, len(opts)+1)
	partOpts = append(partOpts, opts...)
	partOpts = append(partOpts, WithLogger(nil))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		g.Go(func() error {
			b := NewBuilder(partOpts...)
			for n, t := range traces[c.start:c.end] {
				if n%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if err := b.AddTrace(t); err != nil {
					return fmt.Errorf("partition %d: %w", i, err)
				}
			}
			partials[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	// Merging is serial and ordered so node numbering matches a sequential build
	for i, b := range partials {
		if err := result.graph.Merge(b.graph); err != nil {
			timer.EndError(err)
			return nil, fmt.Errorf("merge partition %d: %w", i, err)
		}
		result.traces += b.traces
		result.pairs += b.pairs
	}

	timer.End(
		logging.Int("traces", result.traces),
		logging.Int("pairs", result.pairs),
		logging.Int("nodes", result.graph.NodeCount()),
		logging.Int("edges", result.graph.EdgeCount()),
	)
	return result.graph, nil
}

type span struct {
	start, end int
}

// partition splits n items into at most parts contiguous spans of near-equal size
func partition(n, parts int) []span {
	if n == 0 || parts <= 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	spans := make([]span, 0, parts)
	size, rem := n/parts, n%parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < rem {
			end++
		}
		spans = append(spans, span{start: start, end: end})
		start = end
	}
	return spans
}
