// Package config defines the service configuration and its defaults.
package config

import (
	"fmt"
	"runtime"
	"time"
	_ "time/tzdata" // zone database for Timezone on hosts without one
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// AlbumDir is the directory holding the podium screenshots.
	AlbumDir string `koanf:"album_dir"`

	// Timezone is the IANA zone screenshot file names are written in.
	Timezone string `koanf:"timezone"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	// Empty runs a single album pass without serving.
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory screenshot queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many screenshot keys the deduper remembers.
	// Zero or negative remembers every key.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// KnownPlayers maps player names to a reference screenshot or .fp fingerprint file.
	KnownPlayers map[string]string `koanf:"known_players"`

	// LearnUnknown groups banners of unregistered players under generated names.
	LearnUnknown bool `koanf:"learn_unknown"`

	// ReportPath, when set, receives the JSON report of each run.
	ReportPath string `koanf:"report_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Timezone:            "UTC",
		Addr:                "",
		QueueSize:           256,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		MaxLeaderboardLimit: 100,
		KnownPlayers:        map[string]string{},
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w: %w", c.Timezone, ErrInvalidConfig, err)
	}
	return loc, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.AlbumDir == "":
		return fmt.Errorf("album_dir must not be empty: %w", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("queue_size must be positive, got %d: %w", c.QueueSize, ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("worker_count must be positive, got %d: %w", c.WorkerCount, ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("max_leaderboard_limit must be positive, got %d: %w", c.MaxLeaderboardLimit, ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("log_format must be text or json, got %q: %w", c.LogFormat, ErrInvalidConfig)
	}
	for name, path := range c.KnownPlayers {
		if name == "" || path == "" {
			return fmt.Errorf("known_players entry %q -> %q: %w", name, path, ErrInvalidConfig)
		}
	}
	_, err := c.Location()
	return err
}
