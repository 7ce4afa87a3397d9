// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router for all endpoints. The search endpoint
// carries a per-IP rate limit; everything else is internal tooling.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(h.cfg.Server.Timeout))

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			limit := h.cfg.Server.RateLimitReqs
			window := h.cfg.Server.RateLimitWindow
			if limit <= 0 {
				limit = 100
			}
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(limit, window))
			r.Get("/search", h.HandleSearch)
		})

		r.Post("/sync", h.HandleSync)
		r.Post("/sync/all", h.HandleSyncAll)
		r.Post("/sync/{id}", h.HandleSyncVideo)
		r.Delete("/index/{id}", h.HandleDeleteFromIndex)

		r.Get("/compaction/stats", h.HandleCompactionStats)
		r.Post("/compaction/run", h.HandleCompactionRun)
	})

	return r
}

// HandleHealth serves GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}
