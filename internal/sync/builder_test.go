// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"testing"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

func TestBuildDocumentFlattensRelations(t *testing.T) {
	desc := "a description"
	displayName := "Alice A."
	video := &models.Video{
		ID:           "v1",
		Title:        "flattening",
		Description:  &desc,
		Status:       models.StatusPublished,
		UploadedByID: "u-1",
		CreatedAt:    time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 2, 2, 9, 45, 0, 0, time.UTC),
	}

	doc := BuildDocument(BuildInput{
		Video: video,
		Tags: []models.Tag{
			{ID: "t1", Name: "Comedy", Slug: "comedy"},
			{ID: "t2", Name: "Music", Slug: "music"},
		},
		Creators: []models.Creator{
			{ID: "c1", Username: "alice", DisplayName: &displayName, Aliases: []string{"al"}},
			{ID: "c2", Username: "bob"},
		},
		Metrics: &models.AggregatedMetrics{TotalViews: 7, TotalLikes: 2},
	})

	if got := doc.TagIDs; len(got) != 2 || got[0] != "t1" || got[1] != "t2" {
		t.Errorf("tag ids must preserve position order, got %v", got)
	}
	if got := doc.TagSlugs; len(got) != 2 || got[0] != "comedy" {
		t.Errorf("unexpected tag slugs %v", got)
	}

	if doc.CreatorID == nil || *doc.CreatorID != "c1" {
		t.Errorf("primary creator must be the first featured creator, got %v", doc.CreatorID)
	}
	if doc.CreatorDisplayName == nil || *doc.CreatorDisplayName != displayName {
		t.Error("primary creator display name missing")
	}
	if got := doc.FeaturedCreatorIDs; len(got) != 2 || got[1] != "c2" {
		t.Errorf("unexpected featured creator ids %v", got)
	}
	if got := doc.FeaturedCreatorAliases; len(got) != 1 || got[0] != "al" {
		t.Errorf("aliases must flatten across creators, got %v", got)
	}

	if doc.ViewCount == nil || *doc.ViewCount != 7 {
		t.Errorf("unexpected view count %v", doc.ViewCount)
	}
	if doc.DislikeCount == nil || *doc.DislikeCount != 0 {
		t.Error("zero metric values must still be present when metrics are supplied")
	}
}

func TestBuildDocumentTruncatesTimestamps(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 999_999_999, time.UTC)
	video := &models.Video{
		ID:           "v1",
		Title:        "t",
		Status:       models.StatusPublished,
		UploadedByID: "u-1",
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Second),
	}

	doc := BuildDocument(BuildInput{Video: video})
	if doc.CreatedAt != created.Unix() {
		t.Errorf("created_at must truncate to %d, got %d", created.Unix(), doc.CreatedAt)
	}
	if doc.UpdatedAt != doc.CreatedAt+1 {
		t.Errorf("updated_at off by %d", doc.UpdatedAt-doc.CreatedAt)
	}
}

func TestBuildDocumentOmitsAbsentOptionals(t *testing.T) {
	video := &models.Video{
		ID:           "v1",
		Title:        "bare",
		Status:       models.StatusCreated,
		UploadedByID: "u-1",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	doc := BuildDocument(BuildInput{Video: video})

	if doc.Description != nil || doc.DurationSeconds != nil || doc.HasThumbnail != nil {
		t.Error("absent video optionals must stay nil")
	}
	if doc.ViewCount != nil || doc.PopularityScore != nil {
		t.Error("metrics and scores must be nil when not supplied")
	}
	if len(doc.TagIDs) != 0 || doc.CreatorID != nil {
		t.Error("relation fields must be empty without relations")
	}
}
