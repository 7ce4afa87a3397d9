// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

var noScores bool

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Project every live video into the search index",
	RunE:  runSyncAll,
}

var syncVideoCmd = &cobra.Command{
	Use:   "sync-video <id>",
	Short: "Project a single video into the search index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncVideo,
}

var syncRecentCmd = &cobra.Command{
	Use:   "sync-recent",
	Short: "Project videos with engagement activity in the last 24 hours",
	RunE:  runSyncRecent,
}

var syncApprovedCmd = &cobra.Command{
	Use:   "sync-approved",
	Short: "Project only published videos",
	RunE:  runSyncApproved,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a video from the search index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{syncAllCmd, syncVideoCmd, syncRecentCmd, syncApprovedCmd} {
		cmd.Flags().BoolVar(&noScores, "no-scores", false, "skip popularity/trending score calculation")
	}
	rootCmd.AddCommand(syncAllCmd, syncVideoCmd, syncRecentCmd, syncApprovedCmd, deleteCmd)
}

func syncOptions() syncer.Options {
	return syncer.Options{CalculateScores: !noScores}
}

func runSyncAll(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.coordinator.SyncAll(commandContext(), syncOptions())
	if err != nil {
		return fmt.Errorf("full sync failed: %w", err)
	}
	reportBatch(cmd, result)
	return nil
}

func runSyncVideo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.coordinator.SyncOne(commandContext(), args[0], syncOptions())
	if err != nil {
		return fmt.Errorf("sync failed for %s: %w", args[0], err)
	}
	if doc == nil {
		cmd.Printf("Video %s not found or deleted; nothing to sync.\n", args[0])
		return nil
	}
	cmd.Printf("Synced video %s.\n", doc.ID)
	return nil
}

func runSyncRecent(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.coordinator.SyncRecent(commandContext(), syncOptions())
	if err != nil {
		return fmt.Errorf("recent sync failed: %w", err)
	}
	reportBatch(cmd, result)
	return nil
}

func runSyncApproved(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.coordinator.SyncApproved(commandContext(), syncOptions())
	if err != nil {
		return fmt.Errorf("approved sync failed: %w", err)
	}
	reportBatch(cmd, result)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.coordinator.DeleteOne(commandContext(), args[0]); err != nil {
		return fmt.Errorf("delete failed for %s: %w", args[0], err)
	}
	cmd.Printf("Removed video %s from the index.\n", args[0])
	return nil
}
