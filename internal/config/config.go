// Package config defines the engine configuration and its loading hooks.
//
// Conventions:
//   - New() returns a Config filled with defaults.
//   - Load layers an optional YAML file and BRC_* environment variables on top.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/brc/internal/domain/partition"
	"github.com/okian/brc/internal/domain/record"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Workers sets the number of fold workers; 0 means one per CPU.
	Workers int `koanf:"workers"`

	// ChunkSize is the target size in bytes of one line-aligned chunk.
	ChunkSize int `koanf:"chunk_size"`

	// QueueSize bounds the number of chunks waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// StationHint presizes each worker's map.
	StationHint int `koanf:"station_hint"`

	// ParseMode is relaxed (trusted input) or strict (validate every line).
	ParseMode string `koanf:"parse_mode"`

	// MetricsAddr, when set, serves /metrics, /healthz and /stats during a run.
	MetricsAddr string `koanf:"metrics_addr"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Workers:     runtime.NumCPU(),
		ChunkSize:   partition.DefaultChunkSize,
		QueueSize:   1024,
		StationHint: 1024,
		ParseMode:   record.ModeRelaxed.String(),
	}
}

// Mode returns the parsed ParseMode.
func (c *Config) Mode() (record.Mode, error) {
	return record.ParseMode(c.ParseMode)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.StationHint < 0:
		return fmt.Errorf("%w: station_hint must not be negative", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
