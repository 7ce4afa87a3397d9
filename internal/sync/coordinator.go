// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
	"github.com/jsbroks/splitscreen-sub000/internal/scoring"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

// ErrMissingID is returned when an id-taking operation receives an empty id.
var ErrMissingID = errors.New("video id is required")

// recentWindow is how far back SyncRecent looks for engagement activity.
const recentWindow = 24 * time.Hour

// Options controls a sync pass.
type Options struct {
	// CalculateScores enables score computation. When false the document
	// carries metrics but omits the score fields, which leaves any
	// previously indexed scores gone after the wholesale replace.
	CalculateScores bool
}

// ItemError records one failed id inside a bulk operation.
type ItemError struct {
	ID  string
	Err error
}

// BatchResult aggregates per-item outcomes of a bulk sync. Videos that were
// absent or soft-deleted count as successful no-ops.
type BatchResult struct {
	Successful int
	Failed     int
	Errors     []ItemError
}

// Coordinator orchestrates aggregate, score, build, upsert for one or many
// videos. Safe for concurrent use; all state is stateless clients.
type Coordinator struct {
	store      Store
	index      Index
	aggregator *Aggregator
	scorer     *scoring.Calculator
	batchSize  int
	limiter    *rate.Limiter
}

// NewCoordinator wires a coordinator from its collaborators. A zero or
// negative batch size falls back to the config default. Throttling is off
// when cfg.ThrottlePerSecond is zero.
func NewCoordinator(store Store, index Index, scorer *scoring.Calculator, cfg config.SyncConfig) *Coordinator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	var limiter *rate.Limiter
	if cfg.ThrottlePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ThrottlePerSecond), cfg.ThrottlePerSecond)
	}

	return &Coordinator{
		store:      store,
		index:      index,
		aggregator: NewAggregator(store),
		scorer:     scorer,
		batchSize:  batchSize,
		limiter:    limiter,
	}
}

// SyncOne projects a single video into the index and returns the document
// it wrote. A video that is absent or soft-deleted is nothing to do: the
// coordinator issues a tolerant index delete so a previously indexed copy
// disappears, and returns (nil, nil).
func (c *Coordinator) SyncOne(ctx context.Context, id string, opts Options) (*search.Document, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	start := time.Now()
	doc, err := c.syncOne(ctx, id, opts)
	metrics.SyncDuration.WithLabelValues("one").Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.SyncVideos.WithLabelValues("failure").Inc()
	case doc == nil:
		metrics.SyncVideos.WithLabelValues("skipped").Inc()
	default:
		metrics.SyncVideos.WithLabelValues("success").Inc()
	}
	return doc, err
}

func (c *Coordinator) syncOne(ctx context.Context, id string, opts Options) (*search.Document, error) {
	now := time.Now().UTC()

	video, aggMetrics, err := c.aggregator.Aggregate(ctx, id, now)
	if errors.Is(err, database.ErrNotFound) {
		if delErr := c.index.Delete(ctx, id); delErr != nil {
			logging.Ctx(ctx).Warn().Err(delErr).Str("video_id", id).
				Msg("Failed to remove absent video from index")
		}
		logging.Ctx(ctx).Debug().Str("video_id", id).Msg("Video absent or deleted, nothing to sync")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var scores *models.Scores
	if opts.CalculateScores {
		s := c.scorer.Calculate(aggMetrics, video.CreatedAt, now)
		scores = &s
	}

	tags, err := c.store.GetVideoTags(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch tags for %s: %w", id, err)
	}
	creators, err := c.store.GetVideoCreators(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch creators for %s: %w", id, err)
	}

	doc := BuildDocument(BuildInput{
		Video:    video,
		Tags:     tags,
		Creators: creators,
		Metrics:  aggMetrics,
		Scores:   scores,
	})

	if err := c.index.Upsert(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SyncMany projects the given ids in sequential chunks of the configured
// batch size. Within a chunk every id syncs concurrently and independently;
// one id's failure never aborts or delays its siblings. If the context is
// cancelled, the in-flight chunk finishes and no further chunk starts; the
// partial result is returned alongside the context error.
func (c *Coordinator) SyncMany(ctx context.Context, ids []string, opts Options) (*BatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.SyncDuration.WithLabelValues("many").Observe(time.Since(start).Seconds())
	}()

	result := &BatchResult{}

	for chunkStart := 0; chunkStart < len(ids); chunkStart += c.batchSize {
		if err := ctx.Err(); err != nil {
			logging.Ctx(ctx).Warn().
				Int("remaining", len(ids)-chunkStart).
				Msg("Sync cancelled between chunks")
			return result, err
		}

		chunkEnd := chunkStart + c.batchSize
		if chunkEnd > len(ids) {
			chunkEnd = len(ids)
		}
		chunk := ids[chunkStart:chunkEnd]

		itemErrs := make([]error, len(chunk))
		var wg sync.WaitGroup
		for i, id := range chunk {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				if c.limiter != nil {
					if err := c.limiter.Wait(ctx); err != nil {
						itemErrs[i] = err
						return
					}
				}
				_, err := c.SyncOne(ctx, id, opts)
				itemErrs[i] = err
			}(i, id)
		}
		wg.Wait()

		for i, err := range itemErrs {
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{ID: chunk[i], Err: err})
				logging.Ctx(ctx).Error().Err(err).Str("video_id", chunk[i]).Msg("Video sync failed")
			} else {
				result.Successful++
			}
		}
	}

	return result, nil
}

// SyncAll projects every non-deleted video.
func (c *Coordinator) SyncAll(ctx context.Context, opts Options) (*BatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.SyncDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	}()

	ids, err := c.store.ListVideoIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	logging.Ctx(ctx).Info().Int("videos", len(ids)).Msg("Starting full sync")
	return c.SyncMany(ctx, ids, opts)
}

// SyncRecent projects videos with engagement activity in the last 24 hours.
func (c *Coordinator) SyncRecent(ctx context.Context, opts Options) (*BatchResult, error) {
	ids, err := c.store.ListRecentVideoIDs(ctx, time.Now().UTC().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("list recently active videos: %w", err)
	}
	logging.Ctx(ctx).Info().Int("videos", len(ids)).Msg("Starting recent-activity sync")
	return c.SyncMany(ctx, ids, opts)
}

// SyncApproved projects only published videos.
func (c *Coordinator) SyncApproved(ctx context.Context, opts Options) (*BatchResult, error) {
	ids, err := c.store.ListVideoIDsByStatus(ctx, models.StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("list published videos: %w", err)
	}
	logging.Ctx(ctx).Info().Int("videos", len(ids)).Msg("Starting published-only sync")
	return c.SyncMany(ctx, ids, opts)
}

// DeleteOne removes a video from the index. Deleting an absent document is
// a success.
func (c *Coordinator) DeleteOne(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return c.index.Delete(ctx, id)
}
