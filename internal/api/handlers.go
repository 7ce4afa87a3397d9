// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package api provides the HTTP surface: search queries, sync triggers,
// index deletes, and compaction operations. Handlers are thin shells over
// the coordinator, compactor, and search client.
package api

import (
	"context"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

// Syncer is the sync surface the handlers drive. *sync.Coordinator
// satisfies it.
type Syncer interface {
	SyncOne(ctx context.Context, id string, opts syncer.Options) (*search.Document, error)
	SyncMany(ctx context.Context, ids []string, opts syncer.Options) (*syncer.BatchResult, error)
	SyncAll(ctx context.Context, opts syncer.Options) (*syncer.BatchResult, error)
	DeleteOne(ctx context.Context, id string) error
}

// Compactor is the compaction surface the handlers drive.
// *compaction.Compactor satisfies it.
type Compactor interface {
	Compact(ctx context.Context, p compaction.Params) (*compaction.Result, error)
	Stats(ctx context.Context, olderThan time.Time) (*database.CompressionStats, error)
}

// Searcher is the query surface the handlers drive. *search.Client
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, req *search.Request) (*search.Result, error)
}

// Handler carries the dependencies for all API endpoints.
type Handler struct {
	searcher  Searcher
	syncer    Syncer
	compactor Compactor
	cfg       *config.Config
	startTime time.Time
}

// NewHandler wires an API handler from its collaborators.
func NewHandler(searcher Searcher, sync Syncer, compactor Compactor, cfg *config.Config) *Handler {
	return &Handler{
		searcher:  searcher,
		syncer:    sync,
		compactor: compactor,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
