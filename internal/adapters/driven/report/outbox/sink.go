// Package outbox delivers rendered daily reports by publishing them
// into the lake's reports namespace, where the distribution tooling
// picks them up.
package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.ReportSink = (*Sink)(nil)

// Sink writes reports into an object store.
type Sink struct {
	// store is the lake backend reports are published to.
	store driven.ObjectStore
}

// NewSink creates a report sink over the given object store.
func NewSink(store driven.ObjectStore) *Sink {
	return &Sink{store: store}
}

// Deliver publishes the rendered report at its daily address. The HTML
// is staged first and committed in one step, so readers never see a
// partially written report. Delivering the same day twice replaces the
// earlier copy.
func (s *Sink) Deliver(ctx context.Context, report *domain.DailyReport, html []byte) error {
	finalKey := domain.ReportObjectKey(report.Date)
	stagingKey := domain.StagingKey(uuid.NewString(), finalKey)

	if err := s.store.Put(ctx, stagingKey, html); err != nil {
		return fmt.Errorf("stage report %s: %w", report.Date, err)
	}
	if err := s.store.CommitWrite(ctx, stagingKey, finalKey); err != nil {
		return fmt.Errorf("publish report %s: %w", report.Date, err)
	}

	logger.Debug("Outbox: published report for %s at %s", report.Date, finalKey)
	return nil
}
