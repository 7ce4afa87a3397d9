// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package scoring computes popularity, trending, and engagement-rate scores
// from aggregated engagement metrics. All functions are pure and perform no
// I/O; the weights come from configuration so they can be tuned without a
// code change.
package scoring

import (
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

// Calculator computes scores using a fixed set of weights.
type Calculator struct {
	cfg config.ScoringConfig
}

// NewCalculator builds a Calculator from the given weights.
func NewCalculator(cfg config.ScoringConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate derives all three scores for a video created at createdAt,
// evaluated at now.
func (c *Calculator) Calculate(m *models.AggregatedMetrics, createdAt, now time.Time) models.Scores {
	return models.Scores{
		Popularity:     c.Popularity(m),
		Trending:       c.Trending(m, createdAt, now),
		EngagementRate: c.EngagementRate(m),
	}
}

// Popularity is views + likes*likeWeight - dislikes*dislikeWeight.
// It has no floor and may go negative; callers must not assume
// non-negativity.
func (c *Calculator) Popularity(m *models.AggregatedMetrics) float64 {
	return float64(m.TotalViews) +
		float64(m.TotalLikes)*c.cfg.LikeWeight -
		float64(m.TotalDislikes)*c.cfg.DislikeWeight
}

// Trending combines recency-weighted engagement with a time decay. Activity
// in the last 24 hours dominates, the last 7 days contribute at reduced
// weight, and lifetime totals contribute a small baseline. The decay
// multiplier falls linearly with age across the configured window and is
// clamped at the floor, so old videos approach but never reach zero.
func (c *Calculator) Trending(m *models.AggregatedMetrics, createdAt, now time.Time) float64 {
	recent := float64(m.ViewsLast24h)*c.cfg.RecentViewWeight +
		float64(m.LikesLast24h)*c.cfg.RecentLikeWeight
	weekly := float64(m.ViewsLast7d)*c.cfg.WeeklyViewWeight +
		float64(m.LikesLast7d)*c.cfg.WeeklyLikeWeight
	baseline := c.cfg.BaselineWeight *
		(float64(m.TotalViews) + float64(m.TotalLikes)*c.cfg.LikeWeight)

	raw := recent + weekly + baseline
	return raw * c.timeDecay(createdAt, now)
}

// EngagementRate is likes/views, or exactly 0 when there are no views.
// The explicit guard keeps NaN/Infinity out of the index.
func (c *Calculator) EngagementRate(m *models.AggregatedMetrics) float64 {
	if m.TotalViews <= 0 {
		return 0
	}
	return float64(m.TotalLikes) / float64(m.TotalViews)
}

// timeDecay is max(floor, 1 - ageInDays/window).
func (c *Calculator) timeDecay(createdAt, now time.Time) float64 {
	ageInDays := now.Sub(createdAt).Hours() / 24
	if ageInDays < 0 {
		ageInDays = 0
	}
	decay := 1 - ageInDays/c.cfg.DecayWindowDays
	if decay < c.cfg.DecayFloor {
		return c.cfg.DecayFloor
	}
	return decay
}
