// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package compaction folds old view rows into each video's base counter to
// bound raw event storage. Totals observed through the aggregator never
// change: every compacted row moves into base_view_count in the same
// transaction that deletes it.
package compaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
)

// Store is the subset of the transactional store compaction needs.
// *database.DB satisfies it.
type Store interface {
	ListVideosWithOldViews(ctx context.Context, olderThan time.Time, ids []string) ([]string, error)
	CompactVideoViews(ctx context.Context, videoID string, olderThan time.Time) (int64, error)
	GetViewCompressionStats(ctx context.Context, olderThan time.Time) (*database.CompressionStats, error)
}

// ItemError records one failed video inside a compaction run.
type ItemError struct {
	ID  string
	Err error
}

// Result aggregates a compaction run's per-video outcomes.
type Result struct {
	VideosProcessed int
	ViewsCompressed int64
	Errors          []ItemError
}

// Params controls one compaction run. Zero values fall back to the
// configured defaults; an empty IDs slice means all candidates.
type Params struct {
	// OlderThan is the cutoff: view rows created before it are folded.
	OlderThan time.Time

	// BatchSize bounds how many videos compact concurrently.
	BatchSize int

	// IDs optionally restricts the run to these videos.
	IDs []string
}

// Compactor runs view compaction over the store. Safe for concurrent use.
type Compactor struct {
	store Store
	cfg   config.CompactionConfig
}

// New returns a compactor with the given defaults.
func New(store Store, cfg config.CompactionConfig) *Compactor {
	return &Compactor{store: store, cfg: cfg}
}

// Compact folds view rows older than the cutoff into each candidate
// video's base counter. Candidates process in sequential batches; within a
// batch every video compacts concurrently in its own transaction, and one
// video's failure never aborts the batch. If the context is cancelled, the
// in-flight batch finishes and no further batch starts.
func (c *Compactor) Compact(ctx context.Context, p Params) (*Result, error) {
	start := time.Now()
	cutoff := p.OlderThan
	if cutoff.IsZero() {
		cutoff = start.UTC().Add(-c.cfg.OlderThan)
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = c.cfg.BatchSize
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	candidates, err := c.store.ListVideosWithOldViews(ctx, cutoff, p.IDs)
	if err != nil {
		metrics.CompactionRuns.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("list compaction candidates: %w", err)
	}

	logging.Ctx(ctx).Info().
		Int("candidates", len(candidates)).
		Time("cutoff", cutoff).
		Msg("Starting view compaction")

	result := &Result{}
	var cancelled error

	for batchStart := 0; batchStart < len(candidates); batchStart += batchSize {
		if err := ctx.Err(); err != nil {
			cancelled = err
			logging.Ctx(ctx).Warn().
				Int("remaining", len(candidates)-batchStart).
				Msg("Compaction cancelled between batches")
			break
		}

		batchEnd := batchStart + batchSize
		if batchEnd > len(candidates) {
			batchEnd = len(candidates)
		}
		batch := candidates[batchStart:batchEnd]

		counts := make([]int64, len(batch))
		itemErrs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i, id := range batch {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				counts[i], itemErrs[i] = c.store.CompactVideoViews(ctx, id, cutoff)
			}(i, id)
		}
		wg.Wait()

		for i, err := range itemErrs {
			if err != nil {
				result.Errors = append(result.Errors, ItemError{ID: batch[i], Err: err})
				logging.Ctx(ctx).Error().Err(err).Str("video_id", batch[i]).Msg("Video compaction failed")
				continue
			}
			result.VideosProcessed++
			result.ViewsCompressed += counts[i]
		}
	}

	metrics.CompactionDuration.Observe(time.Since(start).Seconds())
	metrics.CompactionViewsCompressed.Add(float64(result.ViewsCompressed))
	switch {
	case cancelled != nil || len(result.Errors) > 0 && result.VideosProcessed == 0:
		metrics.CompactionRuns.WithLabelValues("failure").Inc()
	case len(result.Errors) > 0:
		metrics.CompactionRuns.WithLabelValues("partial").Inc()
	default:
		metrics.CompactionRuns.WithLabelValues("success").Inc()
	}

	logging.Ctx(ctx).Info().
		Int("videos", result.VideosProcessed).
		Int64("views_compressed", result.ViewsCompressed).
		Int("errors", len(result.Errors)).
		Msg("View compaction finished")

	return result, cancelled
}

// Stats reports what a run with the given cutoff could reclaim. Read-only.
func (c *Compactor) Stats(ctx context.Context, olderThan time.Time) (*database.CompressionStats, error) {
	if olderThan.IsZero() {
		olderThan = time.Now().UTC().Add(-c.cfg.OlderThan)
	}
	return c.store.GetViewCompressionStats(ctx, olderThan)
}
