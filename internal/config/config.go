// Package config loads pipeline configuration from a TOML file with
// environment overrides for credentials, so secrets stay out of the
// file that gets committed to ops repos.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// Lake backend names accepted in configuration.
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
)

// Config is the full pipeline configuration.
type Config struct {
	// Source configures the operational database.
	Source SourceConfig `toml:"source"`

	// Lake configures the data lake backend.
	Lake LakeConfig `toml:"lake"`

	// Pipeline tunes run behaviour.
	Pipeline PipelineConfig `toml:"pipeline"`
}

// SourceConfig configures extraction.
type SourceConfig struct {
	// DSN is the MySQL connection string, e.g.
	// "etl:secret@tcp(db.internal:3306)/trucks". Not needed for
	// report-only use; runs fail cleanly without it.
	DSN string `toml:"dsn"`
}

// LakeConfig selects and configures the lake backend.
type LakeConfig struct {
	// Backend names the object store implementation: "filesystem"
	// or "s3".
	Backend string `toml:"backend"`

	// Directory is the lake root for the filesystem backend.
	Directory string `toml:"directory"`

	// S3 configures the s3 backend.
	S3 S3Config `toml:"s3"`
}

// S3Config holds S3-compatible object store settings.
type S3Config struct {
	// Endpoint is the server address, host:port.
	Endpoint string `toml:"endpoint"`

	// AccessKey and SecretKey authenticate the pipeline. Usually
	// injected through the environment rather than the file.
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`

	// Bucket is the lake bucket. Must already exist.
	Bucket string `toml:"bucket"`

	// Region is the bucket region. Optional for MinIO-style servers.
	Region string `toml:"region"`

	// UseSSL enables TLS to the endpoint.
	UseSSL bool `toml:"use_ssl"`
}

// PipelineConfig tunes run behaviour.
type PipelineConfig struct {
	// LeaseTTLMinutes bounds how long a crashed run blocks the
	// pipeline.
	LeaseTTLMinutes int `toml:"lease_ttl_minutes"`

	// LoadConcurrency caps parallel partition writes.
	LoadConcurrency int `toml:"load_concurrency"`
}

// Default returns the configuration in force before any file or
// environment value applies.
func Default() Config {
	return Config{
		Lake: LakeConfig{
			Backend:   BackendFilesystem,
			Directory: "lake",
		},
		Pipeline: PipelineConfig{
			LeaseTTLMinutes: int(domain.DefaultLeaseTTL.Minutes()),
			LoadConcurrency: 4,
		},
	}
}

// Load reads configuration from path, layering file values over
// defaults and environment overrides over both. An empty path means
// the default location, ~/.trucklake/config.toml, which may be absent;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".trucklake", "config.toml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file at the default location; defaults and
		// environment carry the run.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv lets the environment override file values. Credentials are
// expected to arrive this way in deployed environments.
func (c *Config) applyEnv() {
	setIfPresent(&c.Source.DSN, "TRUCKLAKE_SOURCE_DSN")
	setIfPresent(&c.Lake.Backend, "TRUCKLAKE_LAKE_BACKEND")
	setIfPresent(&c.Lake.Directory, "TRUCKLAKE_LAKE_DIRECTORY")
	setIfPresent(&c.Lake.S3.Endpoint, "TRUCKLAKE_S3_ENDPOINT")
	setIfPresent(&c.Lake.S3.AccessKey, "TRUCKLAKE_S3_ACCESS_KEY")
	setIfPresent(&c.Lake.S3.SecretKey, "TRUCKLAKE_S3_SECRET_KEY")
	setIfPresent(&c.Lake.S3.Bucket, "TRUCKLAKE_S3_BUCKET")
	setIfPresent(&c.Lake.S3.Region, "TRUCKLAKE_S3_REGION")
	if v, ok := os.LookupEnv("TRUCKLAKE_S3_USE_SSL"); ok {
		c.Lake.S3.UseSSL = v == "true" || v == "1"
	}
}

func setIfPresent(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

// Validate checks the configuration is usable. The source DSN is
// deliberately not required here: the report command works without a
// source, and a run without one fails with a clear connection error.
func (c *Config) Validate() error {
	switch c.Lake.Backend {
	case BackendFilesystem:
		if c.Lake.Directory == "" {
			return fmt.Errorf("%w: lake.directory is required for the filesystem backend", domain.ErrInvalidInput)
		}
	case BackendS3:
		if c.Lake.S3.Endpoint == "" {
			return fmt.Errorf("%w: lake.s3.endpoint is required for the s3 backend", domain.ErrInvalidInput)
		}
		if c.Lake.S3.Bucket == "" {
			return fmt.Errorf("%w: lake.s3.bucket is required for the s3 backend", domain.ErrInvalidInput)
		}
		if c.Lake.S3.AccessKey == "" || c.Lake.S3.SecretKey == "" {
			return fmt.Errorf("%w: lake.s3 credentials are required for the s3 backend", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown lake backend %q, want %q or %q",
			domain.ErrInvalidInput, c.Lake.Backend, BackendFilesystem, BackendS3)
	}

	if c.Pipeline.LeaseTTLMinutes <= 0 {
		return fmt.Errorf("%w: pipeline.lease_ttl_minutes must be positive", domain.ErrInvalidInput)
	}
	if c.Pipeline.LoadConcurrency <= 0 {
		return fmt.Errorf("%w: pipeline.load_concurrency must be positive", domain.ErrInvalidInput)
	}
	return nil
}
