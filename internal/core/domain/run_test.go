package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRunState_String tests stage names used in logs
func TestRunState_String(t *testing.T) {
	tests := []struct {
		state RunState
		want  string
	}{
		{RunIdle, "idle"},
		{RunAcquiringLock, "acquiring_lock"},
		{RunReadingWatermark, "reading_watermark"},
		{RunExtracting, "extracting"},
		{RunTransforming, "transforming"},
		{RunPartitioning, "partitioning"},
		{RunLoading, "loading"},
		{RunCommittingWatermark, "committing_watermark"},
		{RunSucceeded, "succeeded"},
		{RunSkipped, "skipped"},
		{RunFailed, "failed"},
		{RunState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

// TestRunState_Terminal tests which states end a run
func TestRunState_Terminal(t *testing.T) {
	assert.True(t, RunSucceeded.Terminal())
	assert.True(t, RunSkipped.Terminal())
	assert.True(t, RunFailed.Terminal())

	assert.False(t, RunIdle.Terminal())
	assert.False(t, RunExtracting.Terminal())
	assert.False(t, RunCommittingWatermark.Terminal())
}

// TestRunSummary_SkippedTotal tests skip counting across reasons
func TestRunSummary_SkippedTotal(t *testing.T) {
	summary := &RunSummary{
		Skipped: map[SkipReason]int{
			SkipMissingKey:   2,
			SkipInvalidTotal: 3,
			SkipDuplicate:    1,
		},
	}
	assert.Equal(t, 6, summary.SkippedTotal())

	empty := &RunSummary{}
	assert.Equal(t, 0, empty.SkippedTotal())
}
