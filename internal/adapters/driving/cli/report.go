package cli

import (
	"errors"
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Generate the daily financial report",
	Long: `Builds the financial summary for one day's completed partition and
delivers the rendered report. The date is a calendar day in YYYY-MM-DD
form; without one, yesterday (UTC) is reported, matching the overnight
schedule.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reporterService == nil {
		return errors.New("report service not configured")
	}

	day, err := reportDay(args)
	if err != nil {
		return err
	}

	report, err := reporterService.Report(cmd.Context(), day)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no partition for %s; has the pipeline run for that day?", day)
		}
		return fmt.Errorf("report failed: %w", err)
	}

	cmd.Printf("Report for %s delivered.\n", report.Date)
	cmd.Printf("  Transactions: %d\n", report.TotalTransactions)
	cmd.Printf("  Revenue:      %s gross, %s net of card costs\n",
		poundsText(report.TotalRevenuePence), poundsText(report.NetRevenuePence))
	cmd.Printf("  Best truck:   %s (%s)\n", report.BestTruck, poundsText(report.BestTruckRevenuePence))
	return nil
}

// reportDay resolves the partition day to report: the argument when
// given, otherwise yesterday in UTC.
func reportDay(args []string) (domain.PartitionKey, error) {
	if len(args) == 0 {
		return domain.PartitionKeyFor(time.Now().UTC().AddDate(0, 0, -1)), nil
	}

	day, err := time.ParseInLocation("2006-01-02", args[0], time.UTC)
	if err != nil {
		return domain.PartitionKey{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", args[0], err)
	}
	return domain.PartitionKeyFor(day), nil
}

// poundsText formats pence as pounds for terminal output.
func poundsText(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s£%s.%02d", sign, humanize.Comma(pence/100), pence%100)
}
