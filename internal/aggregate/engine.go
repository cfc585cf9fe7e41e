// =============================================================================
// Slip Report - Aggregation Runner
// =============================================================================
//
// This file drives the accumulator over the data lines of one input.
//
// PARALLEL RUNS:
//   - Lines are cut into contiguous chunks of at least minChunk lines
//   - Each chunk is normalized and folded into its own Accumulator
//   - Partials are merged in chunk order, so the result matches a
//     sequential fold line for line
//
// =============================================================================

package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/record"
)

// minChunk is the smallest number of lines worth handing to a worker.
const minChunk = 512

// Options controls a single aggregation run.
type Options struct {
	// Workers is the number of chunks processed in parallel.
	// Values below 2 run sequentially.
	Workers int

	// Keep, when set, excludes records for which it returns false.
	Keep func(record.NormalizedRecord) bool
}

// Run normalizes and aggregates data lines.
//
// With more than one worker the lines are cut into contiguous chunks, each
// chunk is folded into its own Accumulator, and the partials are merged in
// chunk order. The result is identical to a sequential run.
//
// RETURNS:
//   - The filled Accumulator.
//   - The context error if the run was cancelled.
func Run(ctx context.Context, lines []csvparser.Line, n *record.Normalizer, opts Options) (*Accumulator, error) {
	workers := opts.Workers
	if maxWorkers := (len(lines) + minChunk - 1) / minChunk; workers > maxWorkers {
		workers = maxWorkers
	}

	if workers < 2 {
		acc := NewAccumulator()
		if err := fold(ctx, acc, lines, n, opts.Keep); err != nil {
			return nil, err
		}
		return acc, nil
	}

	chunkSize := (len(lines) + workers - 1) / workers
	partials := make([]*Accumulator, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(lines))
		partials[i] = NewAccumulator()
		if start >= end {
			continue
		}

		acc, chunk := partials[i], lines[start:end]
		g.Go(func() error {
			return fold(gctx, acc, chunk, n, opts.Keep)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := partials[0]
	for _, p := range partials[1:] {
		result.Merge(p)
	}
	return result, nil
}

// fold normalizes lines into acc, checking for cancellation as it goes.
func fold(ctx context.Context, acc *Accumulator, lines []csvparser.Line, n *record.Normalizer, keep func(record.NormalizedRecord) bool) error {
	for i, line := range lines {
		if i%minChunk == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		acc.Stats.Lines++

		rec, ok := n.Normalize(line)
		if !ok {
			acc.Stats.Skipped++
			continue
		}
		if keep != nil && !keep(rec) {
			acc.Stats.Filtered++
			continue
		}
		acc.Add(rec)
	}
	return nil
}
