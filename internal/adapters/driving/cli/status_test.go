package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driving"
)

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Use)
}

func TestStatusCmd_Short(t *testing.T) {
	assert.Equal(t, "Show pipeline state", statusCmd.Short)
}

func TestStatusCmd_BeforeFirstRun(t *testing.T) {
	status := &driving.PipelineStatus{Watermark: domain.InitialWatermark()}
	cleanup := setupPipelineTest(&mockPipelineRunner{status: status})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Watermark: none")
	assert.Contains(t, buf.String(), "Lease:     free")
}

func TestStatusCmd_ShowsWatermarkAndHeldLease(t *testing.T) {
	status := &driving.PipelineStatus{
		Watermark: domain.Watermark{
			Value:   time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC),
			Version: 3,
		},
		Lease: &domain.Lease{
			Holder:    "run-7",
			ExpiresAt: time.Now().Add(10 * time.Minute).UTC(),
		},
	}
	cleanup := setupPipelineTest(&mockPipelineRunner{status: status})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Watermark: 2024-10-02T12:00:00Z (version 3)")
	assert.Contains(t, buf.String(), "Lease:     held by run-7")
}

func TestStatusCmd_ExpiredLease(t *testing.T) {
	status := &driving.PipelineStatus{
		Watermark: domain.Watermark{
			Value:   time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC),
			Version: 3,
		},
		Lease: &domain.Lease{
			Holder:    "run-7",
			ExpiresAt: time.Now().Add(-10 * time.Minute).UTC(),
		},
	}
	cleanup := setupPipelineTest(&mockPipelineRunner{status: status})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Lease:     expired (was held by run-7")
}

func TestStatusCmd_Failure(t *testing.T) {
	cleanup := setupPipelineTest(&mockPipelineRunner{err: errors.New("lake unreachable")})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read pipeline state")
}

func TestStatusCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupPipelineTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline service not configured")
}
