package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// PipelineRunner triggers pipeline runs and reports pipeline state.
type PipelineRunner interface {
	// Run executes one full pipeline run and returns its summary.
	// A summary in RunSkipped state (lease held by another run) is a
	// benign no-op and comes back with a nil error. A nil error with
	// RunSucceeded covers both "partitions written" and "nothing new".
	Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error)

	// Status returns durable pipeline state without mutating anything.
	Status(ctx context.Context) (*PipelineStatus, error)
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// SinceOverride, when non-nil, replaces the stored watermark as
	// the extraction lower bound for backfill or reprocessing. The
	// stored watermark still guards the commit: reprocessed history
	// never moves it backwards.
	SinceOverride *time.Time
}

// PipelineStatus is a read-only snapshot of shared pipeline state.
type PipelineStatus struct {
	// Watermark is the current durable watermark.
	Watermark domain.Watermark

	// Lease is the lease on record, nil when no run holds one.
	// May be expired; check against the clock before judging a run
	// active.
	Lease *domain.Lease
}
