// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"serve", "sync-all", "sync-video", "sync-recent", "sync-approved",
		"delete", "compact", "compact-stats",
	}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %s not registered", name)
		}
	}
}

func TestSingleItemCommandsRequireArgument(t *testing.T) {
	for _, cmd := range []*cobra.Command{syncVideoCmd, deleteCmd} {
		if err := cmd.Args(cmd, []string{}); err == nil {
			t.Errorf("%s must reject a missing id argument", cmd.Name())
		}
		if err := cmd.Args(cmd, []string{"v1"}); err != nil {
			t.Errorf("%s must accept one id argument, got %v", cmd.Name(), err)
		}
	}
}

func TestCommandContextCarriesCorrelationID(t *testing.T) {
	if id := logging.CorrelationIDFromContext(commandContext()); id == "" {
		t.Error("command context carries no correlation ID")
	}
	a := logging.CorrelationIDFromContext(commandContext())
	b := logging.CorrelationIDFromContext(commandContext())
	if a == b {
		t.Errorf("distinct runs share correlation ID %q", a)
	}
}

func TestReportBatchListsFailures(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	reportBatch(cmd, &syncer.BatchResult{
		Successful: 2,
		Failed:     1,
		Errors:     []syncer.ItemError{{ID: "v3", Err: fmt.Errorf("boom")}},
	})

	got := out.String()
	if !strings.Contains(got, "2 videos") || !strings.Contains(got, "1 failed") {
		t.Errorf("summary line missing from %q", got)
	}
	if !strings.Contains(got, "v3: boom") {
		t.Errorf("failure detail missing from %q", got)
	}
}
