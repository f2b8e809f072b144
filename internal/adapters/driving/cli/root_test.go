package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driving"
)

// mockPipelineRunner implements driving.PipelineRunner for testing.
type mockPipelineRunner struct {
	summary *domain.RunSummary
	status  *driving.PipelineStatus
	err     error
	gotOpts driving.RunOptions
	runs    int
}

func (m *mockPipelineRunner) Run(_ context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	m.runs++
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *mockPipelineRunner) Status(_ context.Context) (*driving.PipelineStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

// mockReporter implements driving.Reporter for testing.
type mockReporter struct {
	report *domain.DailyReport
	err    error
	gotDay domain.PartitionKey
}

func (m *mockReporter) Report(_ context.Context, day domain.PartitionKey) (*domain.DailyReport, error) {
	m.gotDay = day
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// setupPipelineTest swaps in a mock pipeline runner and returns a
// restore function.
func setupPipelineTest(mock driving.PipelineRunner) func() {
	old := pipelineService
	pipelineService = mock
	return func() {
		pipelineService = old
	}
}

// setupReporterTest swaps in a mock reporter and returns a restore
// function.
func setupReporterTest(mock driving.Reporter) func() {
	old := reporterService
	reporterService = mock
	return func() {
		reporterService = old
	}
}

// successSummary returns a completed-run summary with movement in
// every field the run command prints.
func successSummary() *domain.RunSummary {
	return &domain.RunSummary{
		RunID:           "run-42",
		State:           domain.RunSucceeded,
		StartedAt:       time.Date(2024, 10, 3, 6, 0, 0, 0, time.UTC),
		FinishedAt:      time.Date(2024, 10, 3, 6, 0, 2, 0, time.UTC),
		WatermarkBefore: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		WatermarkAfter:  time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC),
		Extracted:       5,
		Loaded:          4,
		Skipped:         map[domain.SkipReason]int{domain.SkipInvalidTotal: 1},
		Partitions: []domain.PartitionKey{
			{Year: 2024, Month: 10, Day: 1},
			{Year: 2024, Month: 10, Day: 2},
		},
	}
}
