// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
	"github.com/jsbroks/splitscreen-sub000/internal/validation"
)

// SyncRequest is the body of POST /api/v1/sync.
type SyncRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`

	// CalculateScores defaults to true; pass false to skip scoring.
	CalculateScores *bool `json:"calculate_scores"`
}

// syncItemError mirrors one per-item failure on the wire.
type syncItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// syncResponse is the payload of the bulk sync endpoints.
type syncResponse struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Errors     []syncItemError `json:"errors,omitempty"`
}

func toSyncResponse(result *syncer.BatchResult) *syncResponse {
	resp := &syncResponse{
		Successful: result.Successful,
		Failed:     result.Failed,
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, syncItemError{ID: e.ID, Error: e.Err.Error()})
	}
	return resp
}

func (req *SyncRequest) options() syncer.Options {
	opts := syncer.Options{CalculateScores: true}
	if req.CalculateScores != nil {
		opts.CalculateScores = *req.CalculateScores
	}
	return opts
}

// HandleSync serves POST /api/v1/sync: project the listed videos. Partial
// failures return 200 with per-item errors; callers re-run the failed ids.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}

	result, err := h.syncer.SyncMany(r.Context(), req.IDs, req.options())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SYNC_FAILED", "bulk sync aborted", err)
		return
	}
	respondData(w, http.StatusOK, toSyncResponse(result))
}

// HandleSyncAll serves POST /api/v1/sync/all: project every live video.
func (h *Handler) HandleSyncAll(w http.ResponseWriter, r *http.Request) {
	calculateScores := getBoolParam(r, "calculate_scores", true)

	result, err := h.syncer.SyncAll(r.Context(), syncer.Options{CalculateScores: calculateScores})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SYNC_FAILED", "full sync aborted", err)
		return
	}
	respondData(w, http.StatusOK, toSyncResponse(result))
}

// HandleSyncVideo serves POST /api/v1/sync/{id}: project one video. An
// absent or soft-deleted video is a successful no-op with a null document.
func (h *Handler) HandleSyncVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.syncer.SyncOne(r.Context(), id, syncer.Options{
		CalculateScores: getBoolParam(r, "calculate_scores", true),
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "SYNC_FAILED"
		if isUnavailable(err) {
			status = http.StatusServiceUnavailable
			code = "INDEX_UNAVAILABLE"
		}
		respondError(w, status, code, "video sync failed", err)
		return
	}
	respondData(w, http.StatusOK, doc)
}

// HandleDeleteFromIndex serves DELETE /api/v1/index/{id}. Idempotent.
func (h *Handler) HandleDeleteFromIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.syncer.DeleteOne(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		code := "DELETE_FAILED"
		if isUnavailable(err) {
			status = http.StatusServiceUnavailable
			code = "INDEX_UNAVAILABLE"
		}
		respondError(w, status, code, "index delete failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "result": "deleted"})
}
