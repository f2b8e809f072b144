// Package cli implements the trucklake command tree. Commands drive
// the core services through their driving ports; wiring happens in
// main before execution.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trucklake/internal/core/ports/driving"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Services the commands call. Injected by main before execution; nil
// until then so tests can substitute mocks.
var (
	pipelineService driving.PipelineRunner
	reporterService driving.Reporter
)

// version is stamped at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "trucklake",
	Short: "Incremental ETL pipeline for the truck transaction lake",
	Long: `Trucklake moves transaction rows from the operational database into a
partitioned data lake and generates daily financial reports.

Each run extracts only rows newer than the stored watermark, cleans and
deduplicates them, and loads them into date partitions. Runs are
idempotent and mutually exclusive, so a crashed or overlapping run
never corrupts the lake.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the driving-port implementations the commands
// call. Must run before ExecuteContext.
func SetServices(pipeline driving.PipelineRunner, reporter driving.Reporter) {
	pipelineService = pipeline
	reporterService = reporter
}

// SetVersion records the build version reported by the version
// command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ExecuteContext runs the command tree. The context flows into every
// command, so an interrupt cancels in-flight pipeline work.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
