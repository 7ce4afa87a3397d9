// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

// EngagementCounts holds raw live-row counts for one video. The base counter
// is NOT included; the aggregator adds it on top.
type EngagementCounts struct {
	Views    int64
	Views24h int64
	Views7d  int64
	Likes    int64
	Likes24h int64
	Likes7d  int64
	Dislikes int64
}

// RecordView appends a view event unless the same attribution key already
// viewed this video within the dedup window. Returns true when a row was
// written, false when the view was suppressed as a duplicate.
func (db *DB) RecordView(ctx context.Context, videoID string, key models.AttributionKey) (bool, error) {
	return db.recordViewAt(ctx, videoID, key, time.Now().UTC())
}

// recordViewAt is RecordView with an explicit timestamp so tests can
// exercise the dedup window boundary.
func (db *DB) recordViewAt(ctx context.Context, videoID string, key models.AttributionKey, at time.Time) (bool, error) {
	if !key.Valid() {
		return false, fmt.Errorf("record view for %s: attribution key must set exactly one of user or fingerprint id", videoID)
	}

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO video_views (id, video_id, user_id, fingerprint_id, attribution_key, created_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM video_views
			WHERE video_id = ? AND attribution_key = ? AND created_at > ?
		)`,
		uuid.New().String(), videoID, nilIfEmpty(key.UserID), nilIfEmpty(key.FingerprintID),
		key.String(), at,
		videoID, key.String(), at.Add(-viewDedupWindow),
	)
	metrics.ObserveDBQuery("record_view", start, err)
	if err != nil {
		return false, fmt.Errorf("record view for %s: %w", videoID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record view for %s: %w", videoID, err)
	}
	return n > 0, nil
}

// UpsertReaction records a like/dislike. At most one reaction row exists per
// (video, attribution key); re-reacting replaces the type in place.
func (db *DB) UpsertReaction(ctx context.Context, videoID string, key models.AttributionKey, reaction models.ReactionType) error {
	return db.upsertReactionAt(ctx, videoID, key, reaction, time.Now().UTC())
}

// upsertReactionAt is UpsertReaction with an explicit timestamp for tests.
func (db *DB) upsertReactionAt(ctx context.Context, videoID string, key models.AttributionKey, reaction models.ReactionType, at time.Time) error {
	if !key.Valid() {
		return fmt.Errorf("upsert reaction for %s: attribution key must set exactly one of user or fingerprint id", videoID)
	}
	if !reaction.Valid() {
		return fmt.Errorf("upsert reaction for %s: unknown reaction type %q", videoID, reaction)
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO video_reactions (id, video_id, user_id, fingerprint_id, attribution_key, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id, attribution_key)
		DO UPDATE SET type = excluded.type, updated_at = excluded.updated_at`,
		uuid.New().String(), videoID, nilIfEmpty(key.UserID), nilIfEmpty(key.FingerprintID),
		key.String(), string(reaction), at, at,
	)
	metrics.ObserveDBQuery("upsert_reaction", start, err)
	if err != nil {
		return fmt.Errorf("upsert reaction for %s: %w", videoID, err)
	}
	return nil
}

// GetEngagementCounts returns the live view and reaction counts for one
// video, windowed against the given reference time.
func (db *DB) GetEngagementCounts(ctx context.Context, videoID string, now time.Time) (*EngagementCounts, error) {
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := &EngagementCounts{}

	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= ?),
			COUNT(*) FILTER (WHERE created_at >= ?)
		FROM video_views
		WHERE video_id = ?`,
		dayAgo, weekAgo, videoID,
	).Scan(&counts.Views, &counts.Views24h, &counts.Views7d)
	metrics.ObserveDBQuery("count_views", start, err)
	if err != nil {
		return nil, fmt.Errorf("count views for %s: %w", videoID, err)
	}

	start = time.Now()
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE type = 'like'),
			COUNT(*) FILTER (WHERE type = 'like' AND updated_at >= ?),
			COUNT(*) FILTER (WHERE type = 'like' AND updated_at >= ?),
			COUNT(*) FILTER (WHERE type = 'dislike')
		FROM video_reactions
		WHERE video_id = ?`,
		dayAgo, weekAgo, videoID,
	).Scan(&counts.Likes, &counts.Likes24h, &counts.Likes7d, &counts.Dislikes)
	metrics.ObserveDBQuery("count_reactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("count reactions for %s: %w", videoID, err)
	}

	return counts, nil
}

// CountViewRows returns the total number of stored view rows for a video.
// Used by tests and operational checks; the aggregation path uses
// GetEngagementCounts.
func (db *DB) CountViewRows(ctx context.Context, videoID string) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM video_views WHERE video_id = ?`, videoID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count view rows for %s: %w", videoID, err)
	}
	return n, nil
}

// nilIfEmpty converts an empty string to a SQL NULL.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
