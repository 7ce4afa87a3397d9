// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

// InsertTag inserts a tag row.
func (db *DB) InsertTag(ctx context.Context, tag *models.Tag) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.Slug)
	if err != nil {
		return fmt.Errorf("insert tag %s: %w", tag.ID, err)
	}
	return nil
}

// TagVideo attaches a tag to a video at the given position.
func (db *DB) TagVideo(ctx context.Context, videoID, tagID string, position int) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO video_tags (video_id, tag_id, position) VALUES (?, ?, ?)`,
		videoID, tagID, position)
	if err != nil {
		return fmt.Errorf("tag video %s with %s: %w", videoID, tagID, err)
	}
	return nil
}

// GetVideoTags returns a video's tags in their natural (position) order.
func (db *DB) GetVideoTags(ctx context.Context, videoID string) ([]models.Tag, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug
		FROM video_tags vt
		JOIN tags t ON t.id = vt.tag_id
		WHERE vt.video_id = ?
		ORDER BY vt.position`, videoID)
	metrics.ObserveDBQuery("get_video_tags", start, err)
	if err != nil {
		return nil, fmt.Errorf("get tags for %s: %w", videoID, err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("get tags for %s: scan: %w", videoID, err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// InsertCreator inserts a creator and their aliases.
func (db *DB) InsertCreator(ctx context.Context, c *models.Creator) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO creators (id, username, display_name) VALUES (?, ?, ?)`,
		c.ID, c.Username, c.DisplayName)
	if err != nil {
		return fmt.Errorf("insert creator %s: %w", c.ID, err)
	}
	for i, alias := range c.Aliases {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO creator_aliases (creator_id, alias, position) VALUES (?, ?, ?)`,
			c.ID, alias, i)
		if err != nil {
			return fmt.Errorf("insert alias for creator %s: %w", c.ID, err)
		}
	}
	return nil
}

// FeatureCreator attaches a featured creator to a video at the given
// position.
func (db *DB) FeatureCreator(ctx context.Context, videoID, creatorID string, position int) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO video_creators (video_id, creator_id, position) VALUES (?, ?, ?)`,
		videoID, creatorID, position)
	if err != nil {
		return fmt.Errorf("feature creator %s on %s: %w", creatorID, videoID, err)
	}
	return nil
}

// GetVideoCreators returns a video's featured creators, aliases included, in
// their natural (position) order.
func (db *DB) GetVideoCreators(ctx context.Context, videoID string) ([]models.Creator, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.username, c.display_name
		FROM video_creators vc
		JOIN creators c ON c.id = vc.creator_id
		WHERE vc.video_id = ?
		ORDER BY vc.position`, videoID)
	metrics.ObserveDBQuery("get_video_creators", start, err)
	if err != nil {
		return nil, fmt.Errorf("get creators for %s: %w", videoID, err)
	}
	defer rows.Close()

	var creators []models.Creator
	for rows.Next() {
		var (
			c           models.Creator
			displayName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Username, &displayName); err != nil {
			return nil, fmt.Errorf("get creators for %s: scan: %w", videoID, err)
		}
		c.DisplayName = nullString(displayName)
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range creators {
		aliases, err := db.getCreatorAliases(ctx, creators[i].ID)
		if err != nil {
			return nil, err
		}
		creators[i].Aliases = aliases
	}
	return creators, nil
}

// getCreatorAliases returns a creator's aliases in position order.
func (db *DB) getCreatorAliases(ctx context.Context, creatorID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT alias FROM creator_aliases WHERE creator_id = ? ORDER BY position`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("get aliases for creator %s: %w", creatorID, err)
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, fmt.Errorf("get aliases for creator %s: scan: %w", creatorID, err)
		}
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}
