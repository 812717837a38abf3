package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/ionoview/internal/report"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of soundings processed at once when no
// limit is configured.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of many sounding files.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on a
// single sounding.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each sounding.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of soundings processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent soundings.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each sounding so that no
// pipeline state leaks between files.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch summarizes the soundings at paths concurrently.
// Summaries are returned in input order. A sounding that fails yields an
// error summary instead of aborting the batch; only context cancellation
// is returned as an error.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*report.Summary, error) {
	bp.logger.Debug("starting batch processing",
		"total", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*report.Summary, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(path)
			err := bp.pipelineFactory().Execute(ctx, job)
			switch {
			case err != nil:
				results[i] = report.NewErrorSummary(path, err)
			case job.Summary == nil:
				results[i] = report.NewErrorSummary(path, ErrNotOpened)
			default:
				results[i] = job.Summary
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total", len(paths),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
