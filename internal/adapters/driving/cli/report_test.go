package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

func sampleReport() *domain.DailyReport {
	return &domain.DailyReport{
		Date:                  domain.PartitionKey{Year: 2024, Month: 10, Day: 1},
		TotalTransactions:     3,
		TotalRevenuePence:     3500,
		NetRevenuePence:       3440,
		BestTruck:             "Burrito Madness",
		BestTruckRevenuePence: 3000,
	}
}

func TestReportCmd_Use(t *testing.T) {
	assert.Equal(t, "report [date]", reportCmd.Use)
}

func TestReportCmd_Short(t *testing.T) {
	assert.Equal(t, "Generate the daily financial report", reportCmd.Short)
}

func TestReportCmd_DeliversForDate(t *testing.T) {
	mock := &mockReporter{report: sampleReport()}
	cleanup := setupReporterTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report", "2024-10-01"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, domain.PartitionKey{Year: 2024, Month: 10, Day: 1}, mock.gotDay)
	assert.Contains(t, buf.String(), "Report for 2024-10-01 delivered.")
	assert.Contains(t, buf.String(), "Transactions: 3")
	assert.Contains(t, buf.String(), "£35.00 gross, £34.40 net")
	assert.Contains(t, buf.String(), "Burrito Madness (£30.00)")
}

func TestReportCmd_DefaultsToYesterday(t *testing.T) {
	mock := &mockReporter{report: sampleReport()}
	cleanup := setupReporterTest(mock)
	defer cleanup()

	expected := domain.PartitionKeyFor(time.Now().UTC().AddDate(0, 0, -1))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"report"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, expected, mock.gotDay)
}

func TestReportCmd_InvalidDate(t *testing.T) {
	mock := &mockReporter{report: sampleReport()}
	cleanup := setupReporterTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"report", "01/10/2024"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestReportCmd_NoPartition(t *testing.T) {
	mock := &mockReporter{err: fmt.Errorf("report 2024-10-01: %w", domain.ErrNotFound)}
	cleanup := setupReporterTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"report", "2024-10-01"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no partition for 2024-10-01")
}

func TestReportCmd_Failure(t *testing.T) {
	mock := &mockReporter{err: errors.New("sink offline")}
	cleanup := setupReporterTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"report", "2024-10-01"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report failed")
}

func TestReportCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupReporterTest(nil)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"report", "2024-10-01"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report service not configured")
}

func TestPoundsText(t *testing.T) {
	assert.Equal(t, "£0.00", poundsText(0))
	assert.Equal(t, "£0.05", poundsText(5))
	assert.Equal(t, "£12.50", poundsText(1250))
	assert.Equal(t, "£1,234.56", poundsText(123456))
	assert.Equal(t, "-£3.50", poundsText(-350))
}
