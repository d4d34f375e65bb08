// Package parallel folds large sample sets across goroutines.
//
// Each worker folds a contiguous chunk into its own aggregator and the
// partial aggregates are merged in chunk order, which yields the same result
// as a sequential fold up to floating point reassociation.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"github.com/born-ml/hybrid/internal/aggr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// span is a half-open range [start, end) of sample positions.
type span struct {
	start, end int
}

// chunks splits n items into contiguous ranges according to cfg.
// Falls back to a single range if parallelism is disabled or n is too small.
func chunks(n int, cfg Config) []span {
	if n == 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return []span{{0, n}}
	}
	size := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	out := make([]span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, span{start, min(start+size, n)})
	}
	return out
}

// Fold aggregates samples with the given variant.
//
// Fold stops early and returns the context error if ctx is cancelled
// before every chunk has been folded.
func Fold(ctx context.Context, kind aggr.Aggr, samples []float64, cfg Config) (*aggr.Aggregator, error) {
	ranges := chunks(len(samples), cfg)
	ctx, sp := startFoldSpan(ctx, kind, len(samples), len(ranges))
	defer sp.End()

	parts := make([]*aggr.Aggregator, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.NumWorkers > 0 {
		g.SetLimit(cfg.NumWorkers)
	}
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := aggr.New(kind)
			for _, v := range samples[r.start:r.end] {
				a.Next(v)
			}
			parts[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fold %s: %w", kind, err)
	}
	if err := ctx.Err(); err != nil {
		sp.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fold %s: %w", kind, err)
	}

	result := aggr.New(kind)
	for _, p := range parts {
		result.Merge(p)
	}
	sp.SetAttributes(attribute.Float64("fold.result", result.Result()))
	recordFold(ctx, kind, len(samples))
	return result, nil
}
