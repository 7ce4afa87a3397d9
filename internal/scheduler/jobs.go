// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package scheduler

import (
	"context"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

// SyncRunner is the sync surface the periodic job drives.
// *sync.Coordinator satisfies it.
type SyncRunner interface {
	SyncAll(ctx context.Context, opts syncer.Options) (*syncer.BatchResult, error)
}

// CompactionRunner is the compaction surface the periodic job drives.
// *compaction.Compactor satisfies it.
type CompactionRunner interface {
	Compact(ctx context.Context, p compaction.Params) (*compaction.Result, error)
}

// SyncService runs a full index sync on a fixed interval. It implements
// suture.Service; a panic or returned error restarts it with backoff.
type SyncService struct {
	coordinator SyncRunner
	interval    time.Duration
}

// NewSyncService returns a periodic full-sync job.
func NewSyncService(coordinator SyncRunner, interval time.Duration) *SyncService {
	return &SyncService{coordinator: coordinator, interval: interval}
}

// Serve implements suture.Service. The first sync runs one interval after
// startup, not immediately, so a restart loop cannot hammer the store.
func (s *SyncService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runCtx := logging.ContextWithNewCorrelationID(ctx)
			result, err := s.coordinator.SyncAll(runCtx, syncer.Options{CalculateScores: true})
			if err != nil {
				logging.Ctx(runCtx).Error().Err(err).Msg("Scheduled sync failed")
				continue
			}
			logging.Ctx(runCtx).Info().
				Int("successful", result.Successful).
				Int("failed", result.Failed).
				Msg("Scheduled sync finished")
		}
	}
}

func (s *SyncService) String() string { return "periodic-sync" }

// CompactionService runs view compaction on a fixed interval.
type CompactionService struct {
	compactor CompactionRunner
	interval  time.Duration
}

// NewCompactionService returns a periodic compaction job.
func NewCompactionService(compactor CompactionRunner, interval time.Duration) *CompactionService {
	return &CompactionService{compactor: compactor, interval: interval}
}

// Serve implements suture.Service.
func (s *CompactionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runCtx := logging.ContextWithNewCorrelationID(ctx)
			result, err := s.compactor.Compact(runCtx, compaction.Params{})
			if err != nil {
				logging.Ctx(runCtx).Error().Err(err).Msg("Scheduled compaction failed")
				continue
			}
			logging.Ctx(runCtx).Info().
				Int("videos", result.VideosProcessed).
				Int64("views_compressed", result.ViewsCompressed).
				Int("errors", len(result.Errors)).
				Msg("Scheduled compaction finished")
		}
	}
}

func (s *CompactionService) String() string { return "periodic-compaction" }
