// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"github.com/jsbroks/splitscreen-sub000/internal/models"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

// BuildInput carries everything the document builder flattens. Metrics and
// Scores may be nil, in which case the corresponding document fields are
// omitted rather than emitted as zeros.
type BuildInput struct {
	Video    *models.Video
	Tags     []models.Tag
	Creators []models.Creator
	Metrics  *models.AggregatedMetrics
	Scores   *models.Scores
}

// BuildDocument flattens a video with its relations, metrics, and scores
// into the search projection. Relation arrays keep the store's position
// order. Timestamps become whole-second epoch integers, truncated.
func BuildDocument(in BuildInput) *search.Document {
	v := in.Video

	doc := &search.Document{
		ID:                 v.ID,
		Title:              v.Title,
		Description:        v.Description,
		UploadedByID:       v.UploadedByID,
		UploadedByUsername: v.UploadedByUsername,
		DurationSeconds:    v.DurationSeconds,
		Status:             string(v.Status),
		HasThumbnail:       v.HasThumbnail,
		IsTranscoded:       v.IsTranscoded,
		TranscodeStatus:    v.TranscodeStatus,
		ReportCount:        v.ReportCount,
		HasActiveReports:   v.HasActiveReports,
		CreatedAt:          v.CreatedAt.Unix(),
		UpdatedAt:          v.UpdatedAt.Unix(),
	}

	for _, tag := range in.Tags {
		doc.TagIDs = append(doc.TagIDs, tag.ID)
		doc.TagNames = append(doc.TagNames, tag.Name)
		doc.TagSlugs = append(doc.TagSlugs, tag.Slug)
	}

	for i, creator := range in.Creators {
		if i == 0 {
			// The first featured creator doubles as the primary creator
			// so single-creator queries stay cheap.
			doc.CreatorID = strPtr(creator.ID)
			doc.CreatorUsername = strPtr(creator.Username)
			doc.CreatorDisplayName = creator.DisplayName
			doc.CreatorAliases = creator.Aliases
		}
		doc.FeaturedCreatorIDs = append(doc.FeaturedCreatorIDs, creator.ID)
		doc.FeaturedCreatorUsernames = append(doc.FeaturedCreatorUsernames, creator.Username)
		if creator.DisplayName != nil {
			doc.FeaturedCreatorDisplayNames = append(doc.FeaturedCreatorDisplayNames, *creator.DisplayName)
		}
		doc.FeaturedCreatorAliases = append(doc.FeaturedCreatorAliases, creator.Aliases...)
	}

	if m := in.Metrics; m != nil {
		doc.ViewCount = int64Ptr(m.TotalViews)
		doc.LikeCount = int64Ptr(m.TotalLikes)
		doc.DislikeCount = int64Ptr(m.TotalDislikes)
		doc.ViewsLast24h = int64Ptr(m.ViewsLast24h)
		doc.ViewsLast7d = int64Ptr(m.ViewsLast7d)
		doc.LikesLast24h = int64Ptr(m.LikesLast24h)
		doc.LikesLast7d = int64Ptr(m.LikesLast7d)
	}

	if s := in.Scores; s != nil {
		doc.PopularityScore = floatPtr(s.Popularity)
		doc.TrendingScore = floatPtr(s.Trending)
		doc.EngagementRate = floatPtr(s.EngagementRate)
	}

	return doc
}

func strPtr(s string) *string     { return &s }
func int64Ptr(n int64) *int64     { return &n }
func floatPtr(f float64) *float64 { return &f }
