// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

// searchResponse is the payload of GET /api/v1/search.
type searchResponse struct {
	IDs      []string `json:"ids"`
	Total    uint64   `json:"total"`
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
	FilterBy string   `json:"filter_by,omitempty"`
	SortBy   string   `json:"sort_by,omitempty"`
}

// HandleSearch serves GET /api/v1/search.
//
// Query parameters: q (free text), status, tags (comma-separated ids),
// creator, uploaded_by, transcoded (bool), min_views, created_after
// (epoch seconds), sort (comma-separated field:direction, "_score" for
// relevance), offset, limit.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	builder := search.NewQueryBuilder().
		Text(q.Get("q"), "title", "description", "tag_names", "creator_username", "creator_aliases").
		Status(q.Get("status")).
		Creator(q.Get("creator")).
		UploadedBy(q.Get("uploaded_by"))

	if tags := q.Get("tags"); tags != "" {
		builder.Tags(strings.Split(tags, ",")...)
	}
	if v := q.Get("transcoded"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "transcoded must be a boolean", nil)
			return
		}
		builder.Transcoded(done)
	}
	if v := q.Get("min_views"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "min_views must be a non-negative integer", nil)
			return
		}
		builder.MinViews(n)
	}
	if v := q.Get("created_after"); v != "" {
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "created_after must be epoch seconds", nil)
			return
		}
		builder.CreatedAfter(time.Unix(epoch, 0).UTC())
	}

	if err := applySorts(builder, q.Get("sort")); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}

	builder.Page(getIntParam(r, "offset", 0), getIntParam(r, "limit", 20))
	req := builder.Build()

	result, err := h.searcher.Search(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "SEARCH_FAILED"
		if isUnavailable(err) {
			status = http.StatusServiceUnavailable
			code = "INDEX_UNAVAILABLE"
		}
		respondError(w, status, code, "search request failed", err)
		return
	}

	respondData(w, http.StatusOK, &searchResponse{
		IDs:      result.IDs,
		Total:    result.Total,
		Offset:   req.Offset,
		Limit:    req.Limit,
		FilterBy: req.FilterExpr(),
		SortBy:   req.SortExpr(),
	})
}

// applySorts parses a comma-separated sort expression onto the builder.
// Each clause is "field" or "field:asc" / "field:desc"; "_score" selects
// relevance ordering, which the builder always emits first.
func applySorts(builder *search.QueryBuilder, expr string) error {
	if expr == "" {
		return nil
	}
	for _, clause := range strings.Split(expr, ",") {
		field, direction, _ := strings.Cut(strings.TrimSpace(clause), ":")
		if field == "" {
			return errEmptySortField
		}
		desc := true
		switch direction {
		case "", "desc":
		case "asc":
			desc = false
		default:
			return errBadSortDirection
		}
		if field == search.SortFieldRelevance {
			builder.SortByRelevance()
			continue
		}
		builder.SortByField(field, desc)
	}
	return nil
}
