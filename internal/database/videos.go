// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

// InsertVideo inserts a video row. Used by fixtures and by the (out of
// scope) upload pipeline.
func (db *DB) InsertVideo(ctx context.Context, v *models.Video) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO videos (
			id, title, description, status, uploaded_by_id, uploaded_by_username,
			duration_seconds, width, height, has_thumbnail, is_transcoded,
			transcode_status, report_count, has_active_reports, base_view_count,
			deleted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, string(v.Status), v.UploadedByID, v.UploadedByUsername,
		v.DurationSeconds, v.Width, v.Height, v.HasThumbnail, v.IsTranscoded,
		v.TranscodeStatus, v.ReportCount, v.HasActiveReports, v.BaseViewCount,
		v.DeletedAt, v.CreatedAt, v.UpdatedAt,
	)
	metrics.ObserveDBQuery("insert_video", start, err)
	if err != nil {
		return fmt.Errorf("insert video %s: %w", v.ID, err)
	}
	return nil
}

// GetVideo fetches a video by id. Soft-deleted or absent videos return
// ErrNotFound.
func (db *DB) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, title, description, status, uploaded_by_id, uploaded_by_username,
			duration_seconds, width, height, has_thumbnail, is_transcoded,
			transcode_status, report_count, has_active_reports, base_view_count,
			deleted_at, created_at, updated_at
		FROM videos
		WHERE id = ? AND deleted_at IS NULL`, id)

	v, err := scanVideo(row)
	metrics.ObserveDBQuery("get_video", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return v, nil
}

// SoftDeleteVideo marks a video as deleted. The sync path removes
// soft-deleted videos from the index on the next pass.
func (db *DB) SoftDeleteVideo(ctx context.Context, id string, at time.Time) error {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE videos SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at, at, id)
	metrics.ObserveDBQuery("soft_delete_video", start, err)
	if err != nil {
		return fmt.Errorf("soft delete video %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListVideoIDs returns the ids of all non-deleted videos, oldest first.
func (db *DB) ListVideoIDs(ctx context.Context) ([]string, error) {
	return db.listIDs(ctx, "list_video_ids", `
		SELECT id FROM videos WHERE deleted_at IS NULL ORDER BY created_at`)
}

// ListVideoIDsByStatus returns the ids of non-deleted videos in the given
// lifecycle state.
func (db *DB) ListVideoIDsByStatus(ctx context.Context, status models.VideoStatus) ([]string, error) {
	return db.listIDs(ctx, "list_video_ids_by_status", `
		SELECT id FROM videos WHERE deleted_at IS NULL AND status = ? ORDER BY created_at`,
		string(status))
}

// ListRecentVideoIDs returns the ids of non-deleted videos that received at
// least one view or reaction since the given time.
func (db *DB) ListRecentVideoIDs(ctx context.Context, since time.Time) ([]string, error) {
	return db.listIDs(ctx, "list_recent_video_ids", `
		SELECT DISTINCT v.id
		FROM videos v
		WHERE v.deleted_at IS NULL AND (
			EXISTS (SELECT 1 FROM video_views vw WHERE vw.video_id = v.id AND vw.created_at >= ?)
			OR EXISTS (SELECT 1 FROM video_reactions vr WHERE vr.video_id = v.id AND vr.updated_at >= ?)
		)
		ORDER BY v.id`, since, since)
}

// listIDs runs a query returning a single id column.
func (db *DB) listIDs(ctx context.Context, operation, query string, args ...interface{}) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery(operation, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.ReplaceAll(operation, "_", " "), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s scan: %w", strings.ReplaceAll(operation, "_", " "), err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVideo scans a full videos row into a model, converting SQL nulls to
// nil pointers.
func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		v                models.Video
		status           string
		description      sql.NullString
		uploadedUsername sql.NullString
		duration         sql.NullInt64
		width            sql.NullInt64
		height           sql.NullInt64
		hasThumbnail     sql.NullBool
		isTranscoded     sql.NullBool
		transcodeStatus  sql.NullString
		reportCount      sql.NullInt64
		hasActiveReports sql.NullBool
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&v.ID, &v.Title, &description, &status, &v.UploadedByID, &uploadedUsername,
		&duration, &width, &height, &hasThumbnail, &isTranscoded,
		&transcodeStatus, &reportCount, &hasActiveReports, &v.BaseViewCount,
		&deletedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Status = models.VideoStatus(status)
	v.Description = nullString(description)
	v.UploadedByUsername = nullString(uploadedUsername)
	v.DurationSeconds = nullInt(duration)
	v.Width = nullInt(width)
	v.Height = nullInt(height)
	v.HasThumbnail = nullBool(hasThumbnail)
	v.IsTranscoded = nullBool(isTranscoded)
	v.TranscodeStatus = nullString(transcodeStatus)
	v.ReportCount = nullInt(reportCount)
	v.HasActiveReports = nullBool(hasActiveReports)
	if deletedAt.Valid {
		t := deletedAt.Time
		v.DeletedAt = &t
	}
	return &v, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}
