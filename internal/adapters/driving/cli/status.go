package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline state",
	Long: `Prints the stored watermark and the run lease without touching
either. Useful for checking how far the lake has caught up and whether
a run is currently in flight.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	status, err := pipelineService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("read pipeline state: %w", err)
	}

	if status.Watermark.IsInitial() {
		cmd.Println("Watermark: none (no run has committed yet)")
	} else {
		cmd.Printf("Watermark: %s (version %d)\n",
			status.Watermark.Value.Format(time.RFC3339), status.Watermark.Version)
	}

	switch {
	case status.Lease == nil:
		cmd.Println("Lease:     free")
	case status.Lease.ExpiredAt(time.Now()):
		cmd.Printf("Lease:     expired (was held by %s until %s)\n",
			status.Lease.Holder, status.Lease.ExpiresAt.Format(time.RFC3339))
	default:
		cmd.Printf("Lease:     held by %s until %s\n",
			status.Lease.Holder, status.Lease.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
