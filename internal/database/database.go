// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package database is the DuckDB-backed transactional store. It owns the
// schema for videos, engagement events, and their relationships, and exposes
// the read/write primitives the sync coordinator and compactor are built on.
//
// The store is the single source of truth; the search index is a disposable
// projection that can always be rebuilt from it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
)

// ErrNotFound is returned when a video is absent or soft-deleted.
// Callers in bulk paths treat it as "nothing to do", not a failure.
var ErrNotFound = errors.New("video not found")

// viewDedupWindow is how long a (video, attribution key) pair suppresses
// repeat view rows.
const viewDedupWindow = 10 * time.Minute

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the DuckDB database at cfg.Path (in-memory when empty) and
// initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := cfg.Path
	if connStr != "" {
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			cfg.Path, numThreads, cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = runtime.NumCPU()
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(1 * time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{conn: conn, cfg: cfg}

	if err := db.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("Database opened")

	return db, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// initSchema creates all tables and indexes if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			description VARCHAR,
			status VARCHAR NOT NULL,
			uploaded_by_id VARCHAR NOT NULL,
			uploaded_by_username VARCHAR,
			duration_seconds INTEGER,
			width INTEGER,
			height INTEGER,
			has_thumbnail BOOLEAN,
			is_transcoded BOOLEAN,
			transcode_status VARCHAR,
			report_count INTEGER,
			has_active_reports BOOLEAN,
			base_view_count BIGINT NOT NULL DEFAULT 0,
			deleted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video_views (
			id VARCHAR PRIMARY KEY,
			video_id VARCHAR NOT NULL,
			user_id VARCHAR,
			fingerprint_id VARCHAR,
			attribution_key VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_views_video_created
			ON video_views (video_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_views_video_attribution
			ON video_views (video_id, attribution_key, created_at)`,
		`CREATE TABLE IF NOT EXISTS video_reactions (
			id VARCHAR PRIMARY KEY,
			video_id VARCHAR NOT NULL,
			user_id VARCHAR,
			fingerprint_id VARCHAR,
			attribution_key VARCHAR NOT NULL,
			type VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_video_attribution
			ON video_reactions (video_id, attribution_key)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			slug VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video_tags (
			video_id VARCHAR NOT NULL,
			tag_id VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (video_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS creators (
			id VARCHAR PRIMARY KEY,
			username VARCHAR NOT NULL,
			display_name VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS creator_aliases (
			creator_id VARCHAR NOT NULL,
			alias VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (creator_id, alias)
		)`,
		`CREATE TABLE IF NOT EXISTS video_creators (
			video_id VARCHAR NOT NULL,
			creator_id VARCHAR NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (video_id, creator_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
