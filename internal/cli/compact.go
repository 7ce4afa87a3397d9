// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
)

var (
	compactOlderThanDays int
	compactBatchSize     int
	compactIDs           []string
	statsOlderThanDays   int
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Fold old view events into base counters",
	Long: `Folds view rows older than the cutoff into each video's base view
counter and deletes them, transactionally per video. Observable view totals
do not change.`,
	RunE: runCompact,
}

var compactStatsCmd = &cobra.Command{
	Use:   "compact-stats",
	Short: "Report how much view history compaction could reclaim",
	RunE:  runCompactStats,
}

func init() {
	compactCmd.Flags().IntVar(&compactOlderThanDays, "older-than-days", 0,
		"override the configured cutoff age in days")
	compactCmd.Flags().IntVar(&compactBatchSize, "batch-size", 0,
		"override the configured per-batch video count")
	compactCmd.Flags().StringSliceVar(&compactIDs, "ids", nil,
		"restrict compaction to these video ids")
	compactStatsCmd.Flags().IntVar(&statsOlderThanDays, "older-than-days", 0,
		"override the configured cutoff age in days")
	rootCmd.AddCommand(compactCmd, compactStatsCmd)
}

func runCompact(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	params := compaction.Params{
		BatchSize: compactBatchSize,
		IDs:       compactIDs,
	}
	if compactOlderThanDays > 0 {
		params.OlderThan = time.Now().UTC().AddDate(0, 0, -compactOlderThanDays)
	}

	result, err := a.compactor.Compact(commandContext(), params)
	if err != nil {
		return fmt.Errorf("compaction failed: %w", err)
	}

	cmd.Printf("Compacted %d views across %d videos, %d failed.\n",
		result.ViewsCompressed, result.VideosProcessed, len(result.Errors))
	for _, e := range result.Errors {
		cmd.Printf("  %s: %v\n", e.ID, e.Err)
	}
	return nil
}

func runCompactStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var olderThan time.Time
	if statsOlderThanDays > 0 {
		olderThan = time.Now().UTC().AddDate(0, 0, -statsOlderThanDays)
	}

	stats, err := a.compactor.Stats(commandContext(), olderThan)
	if err != nil {
		return fmt.Errorf("stats query failed: %w", err)
	}

	cmd.Printf("Total views:        %d\n", stats.TotalViews)
	cmd.Printf("Old views:          %d\n", stats.OldViews)
	cmd.Printf("Recent views:       %d\n", stats.RecentViews)
	cmd.Printf("Videos with old:    %d\n", stats.VideosWithOldViews)
	cmd.Printf("Potential savings:  %.1f%%\n", stats.PotentialSavings*100)
	return nil
}
