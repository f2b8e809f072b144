package driving

import (
	"context"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// Reporter builds and delivers daily financial reports from completed
// partitions. It only reads the lake; it never mutates pipeline state.
type Reporter interface {
	// Report builds and delivers the report for the given day.
	// Fails with domain.ErrNotFound (wrapped) when the day has no
	// partition.
	Report(ctx context.Context, day domain.PartitionKey) (*domain.DailyReport, error)
}
