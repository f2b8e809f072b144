package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/core/ports/driving"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// PipelineService orchestrates full pipeline runs: lease, watermark,
// extract, transform, partition, load, commit. One service instance
// can serve many sequential runs; each run gets its own identity and
// accumulator state.
type PipelineService struct {
	source     driven.TransactionSource
	loader     *Loader
	watermarks driven.WatermarkStore
	lock       driven.RunLock
	leaseTTL   time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// NewPipelineService creates the orchestrator. A nil source is
// accepted for report-only deployments: Status works, Run fails
// without taking the lease. leaseTTL bounds how long a crashed run can
// block its successors; values below one second fall back to
// domain.DefaultLeaseTTL.
func NewPipelineService(
	source driven.TransactionSource,
	loader *Loader,
	watermarks driven.WatermarkStore,
	lock driven.RunLock,
	leaseTTL time.Duration,
) *PipelineService {
	if leaseTTL < time.Second {
		leaseTTL = domain.DefaultLeaseTTL
	}
	return &PipelineService{
		source:     source,
		loader:     loader,
		watermarks: watermarks,
		lock:       lock,
		leaseTTL:   leaseTTL,
		now:        time.Now,
	}
}

// Ensure PipelineService implements the driving port.
var _ driving.PipelineRunner = (*PipelineService)(nil)

// Run executes one pipeline run end to end.
//
// The watermark commits only after every touched partition committed,
// and only when the run loaded rows newer than the watermark it
// started from, so a failed or backfill run can never make the next
// run miss data. A run that finds the lease held elsewhere returns a
// RunSkipped summary with a nil error.
func (p *PipelineService) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{
		RunID:     uuid.NewString(),
		State:     domain.RunIdle,
		StartedAt: p.now().UTC(),
	}
	logger.Info("Pipeline: run %s starting", summary.RunID)

	// A run that cannot extract must not take the lease.
	if p.source == nil {
		summary.State = domain.RunFailed
		summary.FinishedAt = p.now().UTC()
		return summary, fmt.Errorf("%w: no transaction source configured", domain.ErrSourceUnavailable)
	}

	// 1. Take the run lease. A live lease elsewhere means another
	// trigger is already doing this work.
	p.transition(summary, domain.RunAcquiringLock)
	if _, err := p.lock.Acquire(ctx, summary.RunID, p.leaseTTL); err != nil {
		if errors.Is(err, domain.ErrLockUnavailable) {
			summary.State = domain.RunSkipped
			summary.FinishedAt = p.now().UTC()
			logger.Info("Pipeline: run %s skipped, lease held elsewhere", summary.RunID)
			return summary, nil
		}
		return p.fail(ctx, summary, fmt.Errorf("acquire run lease: %w", err))
	}
	defer p.releaseLease(ctx, summary.RunID)

	// 2. Read the watermark. Its version guards the commit at the end
	// of the run.
	p.transition(summary, domain.RunReadingWatermark)
	watermark, err := p.watermarks.Read(ctx)
	if err != nil {
		return p.fail(ctx, summary, fmt.Errorf("read watermark: %w", err))
	}
	summary.WatermarkBefore = watermark.Value
	summary.WatermarkAfter = watermark.Value

	since := watermark.Value
	if opts.SinceOverride != nil {
		since = opts.SinceOverride.UTC()
		logger.Info("Pipeline: run %s extracting from override %s instead of watermark %s",
			summary.RunID, since.Format(time.RFC3339), watermark.Value.Format(time.RFC3339))
	}

	// The upper bound is fixed once per run. Second precision matches
	// the source's timestamp resolution.
	until := p.now().UTC().Truncate(time.Second)
	if !until.After(since) {
		return p.succeed(summary, "window empty")
	}

	// 3. Extract everything in (since, until].
	p.transition(summary, domain.RunExtracting)
	raws, err := p.extract(ctx, since, until)
	if err != nil {
		return p.fail(ctx, summary, err)
	}
	summary.Extracted = len(raws)

	// 4. Validate, coerce and deduplicate.
	p.transition(summary, domain.RunTransforming)
	transformer := NewTransformer()
	for _, raw := range raws {
		transformer.Add(raw)
	}
	records := transformer.Records()
	summary.Skipped = transformer.Skips()
	summary.Loaded = len(records)

	if summary.Extracted == 0 {
		return p.succeed(summary, "no new rows")
	}
	if len(records) == 0 {
		// Everything extracted was excluded. Nothing to load, and the
		// watermark must not move past rows that never landed.
		return p.succeed(summary, "all rows excluded")
	}

	// 5. Group by business date and derive the reference tables.
	p.transition(summary, domain.RunPartitioning)
	partitions := PartitionRecords(records)
	dims := DimensionsOf(records)

	// 6. Load dimensions first so fact rows never reference an entity
	// the lake has not seen, then the partitions.
	p.transition(summary, domain.RunLoading)
	if err := p.loader.LoadDimensions(ctx, summary.RunID, dims); err != nil {
		return p.fail(ctx, summary, err)
	}
	committed, err := p.loader.LoadPartitions(ctx, summary.RunID, partitions)
	summary.Partitions = committed
	if err != nil {
		return p.fail(ctx, summary, err)
	}

	// 7. Advance the watermark to the newest loaded business
	// timestamp. A backfill whose rows are all older than the stored
	// watermark leaves it where it was.
	p.transition(summary, domain.RunCommittingWatermark)
	maxLoaded := records[len(records)-1].At
	if maxLoaded.After(watermark.Value) {
		if err := p.watermarks.Commit(ctx, watermark, maxLoaded); err != nil {
			return p.fail(ctx, summary, fmt.Errorf("commit watermark: %w", err))
		}
		summary.WatermarkAfter = maxLoaded
	} else {
		logger.Info("Pipeline: run %s loaded only history, watermark stays at %s",
			summary.RunID, watermark.Value.Format(time.RFC3339))
	}

	return p.succeed(summary, fmt.Sprintf("%d rows into %d partitions", summary.Loaded, len(summary.Partitions)))
}

// Status reports the durable pipeline state without taking the lease.
func (p *PipelineService) Status(ctx context.Context) (*driving.PipelineStatus, error) {
	watermark, err := p.watermarks.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	lease, err := p.lock.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("read lease: %w", err)
	}
	return &driving.PipelineStatus{
		Watermark: watermark,
		Lease:     lease,
	}, nil
}

// extract drains the source stream for one window into memory. The
// batch is bounded by the window, not the backlog's total history.
func (p *PipelineService) extract(ctx context.Context, since, until time.Time) ([]domain.RawRecord, error) {
	if err := p.source.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping source: %w", err)
	}

	var raws []domain.RawRecord
	records, errs := p.source.Extract(ctx, since, until)
	for raw := range records {
		raws = append(raws, raw)
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("extract rows: %w", err)
	}
	return raws, nil
}

func (p *PipelineService) transition(summary *domain.RunSummary, state domain.RunState) {
	summary.State = state
	logger.Debug("Pipeline: run %s entered %s", summary.RunID, state)
}

func (p *PipelineService) succeed(summary *domain.RunSummary, note string) (*domain.RunSummary, error) {
	summary.State = domain.RunSucceeded
	summary.FinishedAt = p.now().UTC()
	logger.Info("Pipeline: run %s succeeded (%s)", summary.RunID, note)
	return summary, nil
}

// fail marks the run failed and sweeps its staging residue. The
// watermark is untouched; committed partitions stay, and the next
// run's merge rewrites them identically.
func (p *PipelineService) fail(ctx context.Context, summary *domain.RunSummary, err error) (*domain.RunSummary, error) {
	stage := summary.State
	summary.State = domain.RunFailed
	summary.FinishedAt = p.now().UTC()
	logger.Error("Pipeline: run %s failed during %s: %v", summary.RunID, stage, err)

	if cleanupErr := p.loader.CleanupStaging(context.WithoutCancel(ctx), summary.RunID); cleanupErr != nil {
		logger.Warn("Pipeline: run %s staging cleanup failed: %v", summary.RunID, cleanupErr)
	}
	return summary, err
}

// releaseLease frees the run lease even when the run's context was
// cancelled, so a successor does not have to wait out the TTL.
func (p *PipelineService) releaseLease(ctx context.Context, runID string) {
	if err := p.lock.Release(context.WithoutCancel(ctx), runID); err != nil {
		logger.Warn("Pipeline: run %s lease release failed: %v", runID, err)
	}
}
