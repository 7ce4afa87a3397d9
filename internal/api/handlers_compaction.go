// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
	"github.com/jsbroks/splitscreen-sub000/internal/validation"
)

// CompactRequest is the body of POST /api/v1/compaction/run. All fields
// are optional; zero values fall back to configured defaults.
type CompactRequest struct {
	// OlderThanDays overrides the configured cutoff age.
	OlderThanDays int `json:"older_than_days" validate:"min=0"`

	BatchSize int `json:"batch_size" validate:"min=0"`

	// IDs restricts the run to these videos.
	IDs []string `json:"ids"`
}

// compactResponse is the payload of the compaction run endpoint.
type compactResponse struct {
	VideosProcessed int             `json:"videos_processed"`
	ViewsCompressed int64           `json:"views_compressed"`
	Errors          []syncItemError `json:"errors,omitempty"`
}

// HandleCompactionRun serves POST /api/v1/compaction/run. Per-video
// failures return 200 with the error list, like bulk sync.
func (h *Handler) HandleCompactionRun(w http.ResponseWriter, r *http.Request) {
	var req CompactRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", err)
			return
		}
		if verr := validation.ValidateStruct(&req); verr != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
			return
		}
	}

	params := compaction.Params{BatchSize: req.BatchSize, IDs: req.IDs}
	if req.OlderThanDays > 0 {
		params.OlderThan = time.Now().UTC().AddDate(0, 0, -req.OlderThanDays)
	}

	result, err := h.compactor.Compact(r.Context(), params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "COMPACTION_FAILED", "compaction run aborted", err)
		return
	}

	resp := &compactResponse{
		VideosProcessed: result.VideosProcessed,
		ViewsCompressed: result.ViewsCompressed,
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, syncItemError{ID: e.ID, Error: e.Err.Error()})
	}
	respondData(w, http.StatusOK, resp)
}

// HandleCompactionStats serves GET /api/v1/compaction/stats. Read-only.
// older_than_days overrides the configured cutoff.
func (h *Handler) HandleCompactionStats(w http.ResponseWriter, r *http.Request) {
	var olderThan time.Time
	if v := r.URL.Query().Get("older_than_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "older_than_days must be a non-negative integer", nil)
			return
		}
		olderThan = time.Now().UTC().AddDate(0, 0, -days)
	}

	stats, err := h.compactor.Stats(r.Context(), olderThan)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STATS_FAILED", "compression stats query failed", err)
		return
	}
	respondData(w, http.StatusOK, &statsResponse{
		TotalViews:         stats.TotalViews,
		OldViews:           stats.OldViews,
		RecentViews:        stats.RecentViews,
		VideosWithOldViews: stats.VideosWithOldViews,
		PotentialSavings:   stats.PotentialSavings,
	})
}

// statsResponse is the wire form of the compression stats report.
type statsResponse struct {
	TotalViews         int64   `json:"total_views"`
	OldViews           int64   `json:"old_views"`
	RecentViews        int64   `json:"recent_views"`
	VideosWithOldViews int64   `json:"videos_with_old_views"`
	PotentialSavings   float64 `json:"potential_savings"`
}
