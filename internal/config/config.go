// Package config defines the fbmetrics configuration and its layered loading:
// defaults, then an optional YAML file, then FBMETRICS_* environment variables.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultBaseURL is the raw-content root of the StatsBomb open-data repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/statsbomb/open-data/master/data"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// DataDir is a local open-data checkout (the directory holding
	// competitions.json). When empty, data is fetched from BaseURL.
	DataDir string `koanf:"data_dir"`
	BaseURL string `koanf:"base_url"`

	// Workers bounds how many matches are processed concurrently.
	Workers int `koanf:"workers"`

	// CompetitionID and SeasonID select the default batch.
	CompetitionID int `koanf:"competition_id"`
	SeasonID      int `koanf:"season_id"`

	PitchLength         float64 `koanf:"pitch_length"`
	PitchWidth          float64 `koanf:"pitch_width"`
	MinDirectionSamples int     `koanf:"min_direction_samples"`

	// MetricsAddr, when set, serves Prometheus metrics during batch runs.
	MetricsAddr string `koanf:"metrics_addr"`

	S3Region   string `koanf:"s3_region"`
	S3Endpoint string `koanf:"s3_endpoint"`
}

// New returns a Config with defaults: FIFA World Cup 2022 from the public
// open-data repository, stored under ~/.fbmetrics.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		DBPath:              filepath.Join(userHome(), ".fbmetrics", "metrics.db"),
		BaseURL:             DefaultBaseURL,
		Workers:             runtime.NumCPU(),
		CompetitionID:       43,
		SeasonID:            106,
		PitchLength:         120,
		PitchWidth:          80,
		MinDirectionSamples: 10,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.PitchLength <= 0 || c.PitchWidth <= 0:
		return fmt.Errorf("%w: pitch must be positive, got %gx%g", ErrInvalidConfig, c.PitchLength, c.PitchWidth)
	case c.MinDirectionSamples < 0:
		return fmt.Errorf("%w: min_direction_samples must not be negative", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.DataDir == "" && c.BaseURL == "":
		return fmt.Errorf("%w: one of data_dir or base_url is required", ErrInvalidConfig)
	}
	return nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
