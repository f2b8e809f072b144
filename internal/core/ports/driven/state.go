package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// WatermarkStore persists the pipeline watermark. The Orchestrator is
// the only caller of Commit.
type WatermarkStore interface {
	// Read returns the current watermark, or the initial sentinel
	// watermark when no run has ever committed.
	Read(ctx context.Context) (domain.Watermark, error)

	// Commit durably replaces the watermark with expected.Next(value).
	// expected carries the version returned by Read at the start of
	// the run; when the stored version has moved on, Commit fails with
	// domain.ErrConcurrentModification and stores nothing. From the
	// caller's point of view the replacement is atomic: the stored
	// value either changes completely or not at all.
	Commit(ctx context.Context, expected domain.Watermark, value time.Time) error
}

// RunLock provides run-level mutual exclusion through an expiring
// lease, so overlapping scheduled triggers cannot race on the same
// watermark.
type RunLock interface {
	// Acquire takes the lease for holder with the given time-to-live.
	// It fails with domain.ErrLockUnavailable when a live lease is
	// held by someone else; a lapsed lease may be taken over.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (domain.Lease, error)

	// Release frees the lease if holder still owns it. Releasing a
	// lease that lapsed or was taken over is not an error.
	Release(ctx context.Context, holder string) error

	// Current returns the lease on record, or nil when none is held.
	// Expired leases are still returned; callers judge liveness.
	Current(ctx context.Context) (*domain.Lease, error)
}
