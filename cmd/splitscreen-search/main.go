// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package main

import (
	"os"

	"github.com/jsbroks/splitscreen-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
