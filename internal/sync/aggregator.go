// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package sync projects videos from the transactional store into the
// search index: aggregate engagement, score, build the document, upsert.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

// Store is the read surface of the transactional store that sync needs.
// *database.DB satisfies it; tests substitute fakes.
type Store interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	GetEngagementCounts(ctx context.Context, videoID string, now time.Time) (*database.EngagementCounts, error)
	GetVideoTags(ctx context.Context, videoID string) ([]models.Tag, error)
	GetVideoCreators(ctx context.Context, videoID string) ([]models.Creator, error)
	ListVideoIDs(ctx context.Context) ([]string, error)
	ListVideoIDsByStatus(ctx context.Context, status models.VideoStatus) ([]string, error)
	ListRecentVideoIDs(ctx context.Context, since time.Time) ([]string, error)
}

// Index is the write surface of the search index that sync needs.
// *search.Client satisfies it.
type Index interface {
	Upsert(ctx context.Context, doc *search.Document) error
	Delete(ctx context.Context, id string) error
}

// Aggregator computes windowed engagement metrics for a video. Read-only.
type Aggregator struct {
	store Store
}

// NewAggregator returns an aggregator over the given store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate fetches the video and its engagement counts as of now. Total
// views include the base counter absorbed by compaction, so compacting old
// rows never changes the totals a caller observes. An absent or soft-deleted
// video surfaces the store's not-found error unchanged.
func (a *Aggregator) Aggregate(ctx context.Context, id string, now time.Time) (*models.Video, *models.AggregatedMetrics, error) {
	video, err := a.store.GetVideo(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch video %s: %w", id, err)
	}

	counts, err := a.store.GetEngagementCounts(ctx, id, now)
	if err != nil {
		return nil, nil, fmt.Errorf("count engagement for %s: %w", id, err)
	}

	return video, &models.AggregatedMetrics{
		TotalViews:    video.BaseViewCount + counts.Views,
		ViewsLast24h:  counts.Views24h,
		ViewsLast7d:   counts.Views7d,
		TotalLikes:    counts.Likes,
		LikesLast24h:  counts.Likes24h,
		LikesLast7d:   counts.Likes7d,
		TotalDislikes: counts.Dislikes,
	}, nil
}
