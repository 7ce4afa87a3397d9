// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package metrics exposes Prometheus instrumentation for sync, compaction,
// and search index operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync metrics
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splitscreen_sync_duration_seconds",
			Help:    "Duration of video sync operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "one", "many", "all"
	)

	SyncVideos = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitscreen_sync_videos_total",
			Help: "Total number of per-video sync outcomes",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	// Index metrics
	IndexOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splitscreen_index_op_duration_seconds",
			Help:    "Duration of search index operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "upsert", "delete", "search"
	)

	IndexOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitscreen_index_op_errors_total",
			Help: "Total number of search index operation errors",
		},
		[]string{"operation"},
	)

	IndexBreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "splitscreen_index_breaker_open",
			Help: "1 when the index circuit breaker is open, 0 otherwise",
		},
	)

	IndexDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "splitscreen_index_documents",
			Help: "Current number of documents in the search index",
		},
	)

	// Compaction metrics
	CompactionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitscreen_compaction_runs_total",
			Help: "Total number of compaction runs",
		},
		[]string{"result"}, // "success", "partial", "failure"
	)

	CompactionViewsCompressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "splitscreen_compaction_views_compressed_total",
			Help: "Total number of view rows folded into base counters",
		},
	)

	CompactionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "splitscreen_compaction_duration_seconds",
			Help:    "Duration of compaction runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	// Store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splitscreen_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitscreen_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// ObserveDBQuery records a store query's duration and outcome.
func ObserveDBQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveIndexOp records an index operation's duration and outcome.
func ObserveIndexOp(operation string, start time.Time, err error) {
	IndexOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		IndexOpErrors.WithLabelValues(operation).Inc()
	}
}
