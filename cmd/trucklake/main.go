// Command trucklake runs the truck transaction pipeline: incremental
// extraction into the lake and daily report generation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/trucklake/internal/adapters/driven/lake/filesystem"
	"github.com/custodia-labs/trucklake/internal/adapters/driven/lake/parquet"
	"github.com/custodia-labs/trucklake/internal/adapters/driven/lake/s3"
	"github.com/custodia-labs/trucklake/internal/adapters/driven/report/outbox"
	"github.com/custodia-labs/trucklake/internal/adapters/driven/source/mysql"
	"github.com/custodia-labs/trucklake/internal/adapters/driven/state"
	"github.com/custodia-labs/trucklake/internal/adapters/driving/cli"
	"github.com/custodia-labs/trucklake/internal/config"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/core/services"
)

// version is stamped at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trucklake: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Interrupts cancel in-flight work; the orchestrator still
	// releases its lease and sweeps staging on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A local .env is a development convenience; absence is normal.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("TRUCKLAKE_CONFIG"))
	if err != nil {
		return err
	}

	store, err := openLake(ctx, cfg.Lake)
	if err != nil {
		return err
	}

	codec := parquet.NewCodec()
	loader := services.NewLoader(store, codec, cfg.Pipeline.LoadConcurrency)
	watermarks := state.NewWatermarkStore(store)
	lock := state.NewRunLock(store)

	// Runs need a source; status and report do not. With no DSN
	// configured the run command fails cleanly and everything else
	// still works.
	var source driven.TransactionSource
	if cfg.Source.DSN != "" {
		src, err := mysql.Open(cfg.Source.DSN)
		if err != nil {
			return err
		}
		defer src.Close()
		source = src
	}

	leaseTTL := time.Duration(cfg.Pipeline.LeaseTTLMinutes) * time.Minute
	pipeline := services.NewPipelineService(source, loader, watermarks, lock, leaseTTL)
	reporter := services.NewReportService(store, codec, outbox.NewSink(store))

	cli.SetServices(pipeline, reporter)
	cli.SetVersion(version)
	return cli.ExecuteContext(ctx)
}

// openLake constructs the configured lake backend.
func openLake(ctx context.Context, cfg config.LakeConfig) (driven.ObjectStore, error) {
	switch cfg.Backend {
	case config.BackendS3:
		return s3.NewStore(ctx, s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return filesystem.NewStore(cfg.Directory)
	}
}
