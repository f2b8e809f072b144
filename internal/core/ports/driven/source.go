package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// TransactionSource extracts transaction rows from the operational
// store. The source is read-only from the pipeline's point of view;
// rows are treated as append-only.
type TransactionSource interface {
	// Ping verifies the source is reachable before a run commits to
	// extracting. Failures are wrapped in domain.ErrSourceUnavailable.
	Ping(ctx context.Context) error

	// Extract streams rows whose business timestamp falls in the
	// half-open range (since, until], ordered by business timestamp
	// ascending with ties broken by primary key. The lower bound is
	// exclusive so the boundary record of the previous run is never
	// re-read.
	//
	// Rows arrive on the first channel; the second carries at most one
	// terminal error. Both close when extraction finishes. The
	// implementation must page internally so an arbitrarily large
	// backlog never loads at once, and must stop promptly when ctx is
	// cancelled. Connectivity failures surface as
	// domain.ErrSourceUnavailable.
	Extract(ctx context.Context, since, until time.Time) (<-chan domain.RawRecord, <-chan error)

	// Close releases the source connection.
	Close() error
}
