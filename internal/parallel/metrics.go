package parallel

import (
	"context"
	"sync"

	"github.com/born-ml/hybrid/internal/aggr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("hybrid.parallel")
	meter  = otel.Meter("hybrid.parallel")
)

var (
	foldTotal   metric.Int64Counter
	foldSamples metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		foldTotal, err = meter.Int64Counter(
			"parallel_fold_total",
			metric.WithDescription("Total number of completed folds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		foldSamples, err = meter.Int64Counter(
			"parallel_fold_samples_total",
			metric.WithDescription("Total number of samples folded"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func startFoldSpan(ctx context.Context, kind aggr.Aggr, samples, chunks int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "parallel.Fold",
		trace.WithAttributes(
			attribute.String("fold.aggr", kind.String()),
			attribute.Int("fold.samples", samples),
			attribute.Int("fold.chunks", chunks),
		),
	)
}

func recordFold(ctx context.Context, kind aggr.Aggr, samples int) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("aggr", kind.String()))
	foldTotal.Add(ctx, 1, attrs)
	foldSamples.Add(ctx, int64(samples), attrs)
}
