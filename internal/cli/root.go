// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package cli implements the splitscreen-search command tree. Commands are
// thin shells over the sync coordinator, compactor, and search client;
// every command exits 0 on success and 1 on any top-level error.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/scoring"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "splitscreen-search",
	Short: "Video search projection and view compaction",
	Long: `splitscreen-search maintains the denormalized search projection of the
video catalog and periodically folds old view events into aggregate
counters. The transactional store is the source of truth; the index is a
disposable cache that any command here can rebuild.`,
	SilenceUsage: true,
}

// Execute runs the command tree and returns the terminal error, if any.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired collaborators every command needs.
type app struct {
	cfg         *config.Config
	db          *database.DB
	index       *search.Client
	coordinator *syncer.Coordinator
	compactor   *compaction.Compactor
}

// newApp loads configuration, initializes logging, and opens the store and
// the index. Callers must Close it.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	index, err := search.Open(&cfg.Search)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open search index: %w", err)
	}

	calculator := scoring.NewCalculator(cfg.Scoring)
	coordinator := syncer.NewCoordinator(db, index, calculator, cfg.Sync)
	compactor := compaction.New(db, cfg.Compaction)

	return &app{
		cfg:         cfg,
		db:          db,
		index:       index,
		coordinator: coordinator,
		compactor:   compactor,
	}, nil
}

// commandContext returns the base context for a one-shot command run, with
// a fresh correlation ID so the run's log lines can be grouped.
func commandContext() context.Context {
	return logging.ContextWithNewCorrelationID(context.Background())
}

// Close releases the store and index handles.
func (a *app) Close() {
	if err := a.index.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing search index")
	}
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// reportBatch prints a bulk result summary. Partial failures are a warning,
// not an error: the caller can re-run just the failed ids.
func reportBatch(cmd *cobra.Command, result *syncer.BatchResult) {
	cmd.Printf("Synced %d videos, %d failed.\n", result.Successful, result.Failed)
	for _, e := range result.Errors {
		cmd.Printf("  %s: %v\n", e.ID, e.Err)
	}
}
