package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Run-fatal errors. Any of these aborts the run without touching
	// the watermark.

	// ErrSourceUnavailable indicates the operational store could not be
	// reached or the extraction query failed mid-read. Transient: the
	// external scheduler may simply retry the whole run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrConcurrentModification indicates another run advanced shared
	// pipeline state after this run read it. The run aborts and is not
	// retried automatically.
	ErrConcurrentModification = errors.New("concurrent modification")

	// Benign conditions.

	// ErrLockUnavailable indicates the run lease is held by another
	// live run. The trigger exits as a no-op, not a failure.
	ErrLockUnavailable = errors.New("run lock unavailable")
)

// PartialWriteError reports a Loading stage where some partitions
// reached their final address and some did not. The watermark must not
// advance past a run that produced one; the committed partitions are
// safe because the next run's merge rewrite is idempotent.
type PartialWriteError struct {
	// Committed lists partitions whose objects became visible.
	Committed []PartitionKey

	// Failed lists partitions that did not commit, including writes
	// abandoned when a sibling failed first.
	Failed []PartitionKey

	// Err is the first underlying write failure.
	Err error
}

// Error implements the error interface.
func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d partitions committed, %d failed: %v",
		len(e.Committed), len(e.Failed), e.Err)
}

// Unwrap returns the underlying write failure.
func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
