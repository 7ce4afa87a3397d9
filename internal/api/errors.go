// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"errors"

	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

var (
	errEmptySortField   = errors.New("sort clause has no field")
	errBadSortDirection = errors.New("sort direction must be asc or desc")
)

// isUnavailable reports whether an error means the index is unreachable
// (timeout or open circuit breaker), which maps to 503 rather than 500.
func isUnavailable(err error) bool {
	return errors.Is(err, search.ErrUnavailable)
}
