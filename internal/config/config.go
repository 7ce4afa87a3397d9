// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package config provides layered configuration for Splitscreen using koanf:
// struct defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Search     SearchConfig     `koanf:"search"`
	Sync       SyncConfig       `koanf:"sync"`
	Compaction CompactionConfig `koanf:"compaction"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB transactional store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string opens an in-memory
	// database (used by tests).
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// MaxOpenConns bounds the database/sql connection pool.
	MaxOpenConns int `koanf:"max_open_conns"`
}

// SearchConfig configures the bleve search index and its client wrapper.
type SearchConfig struct {
	// IndexPath is the on-disk bleve index directory.
	IndexPath string `koanf:"index_path"`

	// RequestTimeout bounds a single index operation so a slow index cannot
	// stall compaction or a caller's request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// BreakerFailureThreshold is the consecutive-failure count that opens
	// the circuit breaker around index operations.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// SyncConfig configures the sync coordinator.
type SyncConfig struct {
	// BatchSize is how many videos sync concurrently within one chunk.
	// Chunks run sequentially, so this bounds peak store load.
	BatchSize int `koanf:"batch_size"`

	// ThrottlePerSecond rate-limits index upserts during bulk sync.
	// 0 disables throttling.
	ThrottlePerSecond int `koanf:"throttle_per_second"`

	// Interval is the period between scheduled full syncs. 0 disables the
	// scheduled sync service.
	Interval time.Duration `koanf:"interval"`
}

// CompactionConfig configures the view compactor.
type CompactionConfig struct {
	// OlderThan is the age beyond which raw view rows are folded into the
	// base counter.
	OlderThan time.Duration `koanf:"older_than"`

	// BatchSize is how many videos compact concurrently within one batch.
	BatchSize int `koanf:"batch_size"`

	// Interval is the period between scheduled compaction runs. 0 disables
	// the scheduled compaction service.
	Interval time.Duration `koanf:"interval"`
}

// ScoringConfig holds the ranking formula weights. The defaults reproduce
// the empirically chosen production constants; they are configuration, not
// fixed law.
type ScoringConfig struct {
	LikeWeight       float64 `koanf:"like_weight"`
	DislikeWeight    float64 `koanf:"dislike_weight"`
	RecentViewWeight float64 `koanf:"recent_view_weight"`
	RecentLikeWeight float64 `koanf:"recent_like_weight"`
	WeeklyViewWeight float64 `koanf:"weekly_view_weight"`
	WeeklyLikeWeight float64 `koanf:"weekly_like_weight"`
	BaselineWeight   float64 `koanf:"baseline_weight"`
	DecayWindowDays  float64 `koanf:"decay_window_days"`
	DecayFloor       float64 `koanf:"decay_floor"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs is the per-IP request budget for the search endpoint
	// within RateLimitWindow.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/splitscreen.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = runtime.NumCPU()
			MaxOpenConns: 0, // 0 = runtime.NumCPU()
		},
		Search: SearchConfig{
			IndexPath:               "/data/splitscreen.bleve",
			RequestTimeout:          5 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerCooldown:         30 * time.Second,
		},
		Sync: SyncConfig{
			BatchSize:         10,
			ThrottlePerSecond: 0, // unlimited
			Interval:          1 * time.Hour,
		},
		Compaction: CompactionConfig{
			OlderThan: 90 * 24 * time.Hour,
			BatchSize: 100,
			Interval:  24 * time.Hour,
		},
		Scoring: ScoringConfig{
			LikeWeight:       10,
			DislikeWeight:    5,
			RecentViewWeight: 10,
			RecentLikeWeight: 50,
			WeeklyViewWeight: 5,
			WeeklyLikeWeight: 25,
			BaselineWeight:   0.1,
			DecayWindowDays:  30,
			DecayFloor:       0.1,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that would break the service
// at runtime. Called automatically by Load.
func (c *Config) Validate() error {
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateCompaction(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateSync() error {
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	}
	if c.Sync.ThrottlePerSecond < 0 {
		return fmt.Errorf("sync.throttle_per_second must be non-negative, got %d", c.Sync.ThrottlePerSecond)
	}
	return nil
}

func (c *Config) validateCompaction() error {
	if c.Compaction.BatchSize <= 0 {
		return fmt.Errorf("compaction.batch_size must be positive, got %d", c.Compaction.BatchSize)
	}
	if c.Compaction.OlderThan <= 0 {
		return fmt.Errorf("compaction.older_than must be positive, got %s", c.Compaction.OlderThan)
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.DecayWindowDays <= 0 {
		return fmt.Errorf("scoring.decay_window_days must be positive, got %g", c.Scoring.DecayWindowDays)
	}
	if c.Scoring.DecayFloor <= 0 || c.Scoring.DecayFloor > 1 {
		return fmt.Errorf("scoring.decay_floor must be in (0, 1], got %g", c.Scoring.DecayFloor)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.RequestTimeout <= 0 {
		return fmt.Errorf("search.request_timeout must be positive, got %s", c.Search.RequestTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	return nil
}
