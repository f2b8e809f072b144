package domain

import "time"

// RunState is the Orchestrator's position in the pipeline state
// machine. The success path walks the stages in order; Failed is
// reachable from any stage; Skipped means the lease was held
// elsewhere and nothing was read or written.
type RunState int

const (
	// RunIdle: no run in progress.
	RunIdle RunState = iota

	// RunAcquiringLock: taking the run lease.
	RunAcquiringLock

	// RunReadingWatermark: loading the extraction lower bound.
	RunReadingWatermark

	// RunExtracting: streaming new rows from the source.
	RunExtracting

	// RunTransforming: validating and coercing extracted rows.
	RunTransforming

	// RunPartitioning: grouping records by business date.
	RunPartitioning

	// RunLoading: writing partition and dimension objects.
	RunLoading

	// RunCommittingWatermark: durably advancing the watermark.
	RunCommittingWatermark

	// RunSucceeded: terminal. Every touched partition committed and
	// the watermark advanced, or there was nothing to do.
	RunSucceeded

	// RunSkipped: terminal. The lease was held by another run.
	RunSkipped

	// RunFailed: terminal. The watermark is untouched; any partition
	// writes were either never visible or are safely rewritten by the
	// next run's idempotent merge.
	RunFailed
)

// String returns the snake_case stage name used in logs.
func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunAcquiringLock:
		return "acquiring_lock"
	case RunReadingWatermark:
		return "reading_watermark"
	case RunExtracting:
		return "extracting"
	case RunTransforming:
		return "transforming"
	case RunPartitioning:
		return "partitioning"
	case RunLoading:
		return "loading"
	case RunCommittingWatermark:
		return "committing_watermark"
	case RunSucceeded:
		return "succeeded"
	case RunSkipped:
		return "skipped"
	case RunFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunSucceeded || s == RunSkipped || s == RunFailed
}

// RunSummary is the outcome of one pipeline run.
type RunSummary struct {
	// RunID uniquely identifies the run. Also the lease holder token.
	RunID string

	// State is the terminal state the run reached.
	State RunState

	// StartedAt and FinishedAt bound the run in wall-clock time.
	StartedAt  time.Time
	FinishedAt time.Time

	// WatermarkBefore and WatermarkAfter record watermark movement.
	// Equal when nothing advanced.
	WatermarkBefore time.Time
	WatermarkAfter  time.Time

	// Extracted counts rows read from the source.
	Extracted int

	// Loaded counts rows written into partitions, after dedup.
	Loaded int

	// Skipped counts excluded rows by reason.
	Skipped map[SkipReason]int

	// Partitions lists the partitions written by this run, in
	// chronological order.
	Partitions []PartitionKey
}

// SkippedTotal sums skips across all reasons.
func (s *RunSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
