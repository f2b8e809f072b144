package driven

import (
	"context"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// ReportSink delivers a rendered daily report to its audience.
// Implementations own where the report lands (lake object, mailer
// hand-off); the report service owns what it says.
type ReportSink interface {
	// Deliver hands over the rendered HTML for the given day's report.
	Deliver(ctx context.Context, report *domain.DailyReport, html []byte) error
}
