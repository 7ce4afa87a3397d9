// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
)

// CompressionStats is a read-only report of how much view history is
// reclaimable below a cutoff.
type CompressionStats struct {
	TotalViews         int64
	OldViews           int64
	RecentViews        int64
	VideosWithOldViews int64

	// PotentialSavings is the fraction of stored rows that compaction would
	// remove, in [0, 1].
	PotentialSavings float64
}

// ListVideosWithOldViews returns the ids of videos having at least one view
// row older than the cutoff, optionally restricted to the given ids.
func (db *DB) ListVideosWithOldViews(ctx context.Context, olderThan time.Time, ids []string) ([]string, error) {
	query := `SELECT DISTINCT video_id FROM video_views WHERE created_at < ?`
	args := []interface{}{olderThan}

	if len(ids) > 0 {
		query += ` AND video_id IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY video_id`

	return db.listIDs(ctx, "list_videos_with_old_views", query, args...)
}

// CompactVideoViews folds one video's view rows older than the cutoff into
// its base counter and deletes them, all inside a single transaction. The
// counter mutation is an atomic increment expression, never read-then-write,
// so it interleaves correctly with concurrent new views and concurrent
// compaction. A zero count is a no-op. Returns the number of rows folded.
func (db *DB) CompactVideoViews(ctx context.Context, videoID string, olderThan time.Time) (int64, error) {
	start := time.Now()
	compressed, err := db.compactVideoViews(ctx, videoID, olderThan)
	metrics.ObserveDBQuery("compact_video_views", start, err)
	return compressed, err
}

func (db *DB) compactVideoViews(ctx context.Context, videoID string, olderThan time.Time) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("compact %s: begin: %w", videoID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM video_views WHERE video_id = ? AND created_at < ?`,
		videoID, olderThan).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("compact %s: count: %w", videoID, err)
	}

	if count == 0 {
		return 0, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE videos SET base_view_count = base_view_count + ? WHERE id = ?`,
		count, videoID)
	if err != nil {
		return 0, fmt.Errorf("compact %s: increment counter: %w", videoID, err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM video_views WHERE video_id = ? AND created_at < ?`,
		videoID, olderThan)
	if err != nil {
		return 0, fmt.Errorf("compact %s: delete rows: %w", videoID, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("compact %s: rows affected: %w", videoID, err)
	}
	// The delete predicate is identical to the count predicate and both run
	// in the same transaction snapshot, so any mismatch means the counter
	// increment no longer matches the deleted rows. Abort rather than
	// double-count.
	if deleted != count {
		return 0, fmt.Errorf("compact %s: counted %d rows but deleted %d", videoID, count, deleted)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("compact %s: commit: %w", videoID, err)
	}
	return count, nil
}

// GetViewCompressionStats reports how much view history is reclaimable below
// the cutoff. Read-only.
func (db *DB) GetViewCompressionStats(ctx context.Context, olderThan time.Time) (*CompressionStats, error) {
	stats := &CompressionStats{}

	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at < ?),
			COUNT(DISTINCT video_id) FILTER (WHERE created_at < ?)
		FROM video_views`,
		olderThan, olderThan,
	).Scan(&stats.TotalViews, &stats.OldViews, &stats.VideosWithOldViews)
	metrics.ObserveDBQuery("view_compression_stats", start, err)
	if err != nil {
		return nil, fmt.Errorf("view compression stats: %w", err)
	}

	stats.RecentViews = stats.TotalViews - stats.OldViews
	if stats.TotalViews > 0 {
		stats.PotentialSavings = float64(stats.OldViews) / float64(stats.TotalViews)
	}
	return stats, nil
}

// placeholders returns n comma-joined SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
