// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package database

import (
	"context"
	"testing"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

// setupTestDB opens an isolated in-memory DuckDB instance.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{Path: "", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// insertTestVideo inserts a published video with sensible defaults.
func insertTestVideo(t *testing.T, db *DB, id string) *models.Video {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	v := &models.Video{
		ID:           id,
		Title:        "Test video " + id,
		Status:       models.StatusPublished,
		UploadedByID: "u-1",
		CreatedAt:    now.Add(-48 * time.Hour),
		UpdatedAt:    now,
	}
	if err := db.InsertVideo(context.Background(), v); err != nil {
		t.Fatalf("insert test video %s: %v", id, err)
	}
	return v
}

// insertViewAt writes a view row at an explicit time, bypassing RecordView's
// "now" so tests can backdate history.
func insertViewAt(t *testing.T, db *DB, videoID string, key models.AttributionKey, at time.Time) {
	t.Helper()

	recorded, err := db.recordViewAt(context.Background(), videoID, key, at)
	if err != nil {
		t.Fatalf("insert view for %s: %v", videoID, err)
	}
	if !recorded {
		t.Fatalf("expected view for %s at %v to be recorded, was deduplicated", videoID, at)
	}
}
