// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jsbroks/splitscreen-sub000/internal/logging"
)

// requestIDWithLogging wraps chi's RequestID middleware and attaches a fresh
// correlation ID to each request context, so every log line written while
// handling the request carries it.
func requestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.ContextWithNewCorrelationID(r.Context())
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
