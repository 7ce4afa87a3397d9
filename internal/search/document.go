// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package search wraps the bleve index behind an idempotent client and a
// fluent query builder. Documents here are a disposable projection of the
// transactional store; they can be deleted and rebuilt at any time.
package search

import (
	json "github.com/goccy/go-json"
)

// Document is the denormalized projection of a video stored in the search
// index. Optional fields are pointers with omitempty so absent values are
// omitted from the serialized document rather than emitted as null.
// Timestamps are whole-second epoch integers for sortability.
type Document struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`

	CreatorID          *string  `json:"creator_id,omitempty"`
	CreatorUsername    *string  `json:"creator_username,omitempty"`
	CreatorDisplayName *string  `json:"creator_display_name,omitempty"`
	CreatorAliases     []string `json:"creator_aliases,omitempty"`

	FeaturedCreatorIDs          []string `json:"featured_creator_ids,omitempty"`
	FeaturedCreatorUsernames    []string `json:"featured_creator_usernames,omitempty"`
	FeaturedCreatorDisplayNames []string `json:"featured_creator_display_names,omitempty"`
	FeaturedCreatorAliases      []string `json:"featured_creator_aliases,omitempty"`

	TagIDs   []string `json:"tag_ids,omitempty"`
	TagNames []string `json:"tag_names,omitempty"`
	TagSlugs []string `json:"tag_slugs,omitempty"`

	UploadedByID       string  `json:"uploaded_by_id"`
	UploadedByUsername *string `json:"uploaded_by_username,omitempty"`

	DurationSeconds  *int    `json:"duration_seconds,omitempty"`
	Status           string  `json:"status"`
	HasThumbnail     *bool   `json:"has_thumbnail,omitempty"`
	IsTranscoded     *bool   `json:"is_transcoded,omitempty"`
	TranscodeStatus  *string `json:"transcode_status,omitempty"`
	ReportCount      *int    `json:"report_count,omitempty"`
	HasActiveReports *bool   `json:"has_active_reports,omitempty"`

	ViewCount       *int64   `json:"view_count,omitempty"`
	LikeCount       *int64   `json:"like_count,omitempty"`
	DislikeCount    *int64   `json:"dislike_count,omitempty"`
	PopularityScore *float64 `json:"popularity_score,omitempty"`
	TrendingScore   *float64 `json:"trending_score,omitempty"`
	EngagementRate  *float64 `json:"engagement_rate,omitempty"`
	ViewsLast24h    *int64   `json:"views_last_24h,omitempty"`
	ViewsLast7d     *int64   `json:"views_last_7d,omitempty"`
	LikesLast24h    *int64   `json:"likes_last_24h,omitempty"`
	LikesLast7d     *int64   `json:"likes_last_7d,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Marshal serializes the document to its wire form, omitting absent
// optional fields.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// fields converts the document into the flat field map that gets indexed.
// Going through the serialized form keeps the indexed shape identical to
// the wire shape, including field omission.
func (d *Document) fields() (map[string]interface{}, error) {
	raw, err := d.Marshal()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
