// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Errors returned by Load and Validate wrap this package's sentinels.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store backends.
const (
	StoreCSV    = "csv"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the official and community source files.
	DataDir string `koanf:"data_dir"`

	// Store selects the match store: csv or sqlite.
	Store string `koanf:"store"`

	// AccumulationPath is the CSV file matches are appended to.
	AccumulationPath string `koanf:"accumulation_path"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// TimeToleranceSeconds bounds the finish time difference of a candidate.
	TimeToleranceSeconds int `koanf:"time_tolerance_seconds"`

	// NameSimilarityThreshold is the minimum accepted name similarity.
	NameSimilarityThreshold float64 `koanf:"name_similarity_threshold"`

	// Partitions splits the community batch for parallel linking. 1 links serially.
	Partitions int `koanf:"partitions"`

	// WorkerCount sets the number of link workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// RunRatePerMinute caps POST /runs. Zero disables the limit.
	RunRatePerMinute int `koanf:"run_rate_per_minute"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DataDir:                 "data",
		Store:                   StoreCSV,
		AccumulationPath:        filepath.Join("data", "master_matches.csv"),
		SQLitePath:              filepath.Join("data", "matches.db"),
		TimeToleranceSeconds:    60,
		NameSimilarityThreshold: 0.85,
		Partitions:              1,
		WorkerCount:             2,
		QueueSize:               64,
		RunRatePerMinute:        30,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TimeToleranceSeconds < 0:
		return fmt.Errorf("%w: time_tolerance_seconds must be >= 0", ErrInvalidConfig)
	case c.NameSimilarityThreshold < 0 || c.NameSimilarityThreshold > 1:
		return fmt.Errorf("%w: name_similarity_threshold must be within [0,1]", ErrInvalidConfig)
	case c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.Store != StoreCSV && c.Store != StoreSQLite:
		return fmt.Errorf("%w: store must be %q or %q, got %q", ErrInvalidConfig, StoreCSV, StoreSQLite, c.Store)
	case c.RunRatePerMinute < 0:
		return fmt.Errorf("%w: run_rate_per_minute must be >= 0", ErrInvalidConfig)
	}
	return nil
}
