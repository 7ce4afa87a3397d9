// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jsbroks/splitscreen-sub000/internal/api"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with scheduled sync and compaction",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewHandler(a.index, a.coordinator, a.compactor, a.cfg)
	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: a.cfg.Server.Timeout,
	}

	tree := scheduler.NewTree(logging.NewSlogLogger(), scheduler.DefaultTreeConfig())
	tree.AddAPI(scheduler.NewHTTPService(server, a.cfg.Server.Timeout))
	if interval := a.cfg.Sync.Interval; interval > 0 {
		tree.AddJob(scheduler.NewSyncService(a.coordinator, interval))
	}
	if interval := a.cfg.Compaction.Interval; interval > 0 {
		tree.AddJob(scheduler.NewCompactionService(a.compactor, interval))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting splitscreen-search")
	err = <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
