// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

func TestSyncOneUpsertsDocument(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("v1", models.StatusPublished)

	coord := newTestCoordinator(store, index, 10)
	doc, err := coord.SyncOne(context.Background(), "v1", Options{CalculateScores: true})
	if err != nil {
		t.Fatalf("SyncOne failed: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document, got nil")
	}
	if doc.ID != "v1" || doc.Status != "published" {
		t.Errorf("unexpected document: id=%s status=%s", doc.ID, doc.Status)
	}
	if doc.ViewCount == nil || doc.TrendingScore == nil {
		t.Error("expected metrics and scores on the document")
	}
	if _, ok := index.stored("v1"); !ok {
		t.Error("document not present in index")
	}
}

func TestSyncOneIsIdempotent(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	v := store.addVideo("v1", models.StatusPublished)
	v.BaseViewCount = 1000
	store.setCounts("v1", &database.EngagementCounts{
		Views:    42,
		Views24h: 7,
		Views7d:  21,
		Likes:    9,
		Likes24h: 2,
		Likes7d:  5,
		Dislikes: 1,
	})

	// Trending decays with wall-clock time, so scores stay off; the rest
	// of the document must be byte-stable across runs.
	coord := newTestCoordinator(store, index, 10)
	ctx := context.Background()

	doc, err := coord.SyncOne(ctx, "v1", Options{CalculateScores: false})
	if err != nil {
		t.Fatalf("first SyncOne failed: %v", err)
	}
	if doc.ViewCount == nil || *doc.ViewCount != 1042 {
		t.Fatalf("expected view_count 1042, got %v", doc.ViewCount)
	}
	if doc.LikeCount == nil || *doc.LikeCount != 9 {
		t.Fatalf("expected like_count 9, got %v", doc.LikeCount)
	}
	first, _ := index.stored("v1")

	if _, err := coord.SyncOne(ctx, "v1", Options{CalculateScores: false}); err != nil {
		t.Fatalf("second SyncOne failed: %v", err)
	}
	second, _ := index.stored("v1")

	if !sameBytes(first, second) {
		t.Errorf("documents differ across identical syncs:\n%s\n%s", first, second)
	}
}

func TestSyncOneEmptyIDFailsFast(t *testing.T) {
	coord := newTestCoordinator(newFakeStore(), newFakeIndex(), 10)
	if _, err := coord.SyncOne(context.Background(), "", Options{}); !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestSyncOneMissingVideoIsNoOp(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()

	coord := newTestCoordinator(store, index, 10)
	doc, err := coord.SyncOne(context.Background(), "ghost", Options{CalculateScores: true})
	if err != nil {
		t.Fatalf("missing video must not be an error, got %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document for missing video, got %+v", doc)
	}
	if len(index.deletes) != 1 || index.deletes[0] != "ghost" {
		t.Errorf("expected a tolerant index delete for ghost, got %v", index.deletes)
	}
}

func TestSyncOneSoftDeletedRemovesFromIndex(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	v := store.addVideo("v1", models.StatusPublished)

	coord := newTestCoordinator(store, index, 10)
	ctx := context.Background()

	if _, err := coord.SyncOne(ctx, "v1", Options{}); err != nil {
		t.Fatalf("SyncOne failed: %v", err)
	}

	now := v.CreatedAt.AddDate(0, 0, 1)
	store.mu.Lock()
	v.DeletedAt = &now
	store.mu.Unlock()

	doc, err := coord.SyncOne(ctx, "v1", Options{})
	if err != nil || doc != nil {
		t.Fatalf("soft-deleted sync: doc=%v err=%v", doc, err)
	}
	if _, ok := index.stored("v1"); ok {
		t.Error("soft-deleted video still present in index")
	}
}

func TestSyncOneWithoutScoresOmitsScoreFields(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("v1", models.StatusPublished)

	coord := newTestCoordinator(store, index, 10)
	doc, err := coord.SyncOne(context.Background(), "v1", Options{CalculateScores: false})
	if err != nil {
		t.Fatalf("SyncOne failed: %v", err)
	}
	if doc.PopularityScore != nil || doc.TrendingScore != nil || doc.EngagementRate != nil {
		t.Error("expected score fields to be omitted when scoring is off")
	}
	if doc.ViewCount == nil {
		t.Error("metrics must still be present when scoring is off")
	}
}

func TestSyncManyIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()

	ids := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("v%d", i)
		store.addVideo(id, models.StatusPublished)
		ids = append(ids, id)
	}
	store.failGet["v3"] = errBoom

	coord := newTestCoordinator(store, index, 10)
	result, err := coord.SyncMany(context.Background(), ids, Options{CalculateScores: true})
	if err != nil {
		t.Fatalf("SyncMany must not fail for per-item errors: %v", err)
	}

	if result.Successful != 9 || result.Failed != 1 {
		t.Errorf("expected 9 successful / 1 failed, got %d / %d", result.Successful, result.Failed)
	}
	if len(result.Errors) != 1 || result.Errors[0].ID != "v3" {
		t.Fatalf("expected one error for v3, got %+v", result.Errors)
	}
	if !errors.Is(result.Errors[0].Err, errBoom) {
		t.Errorf("expected wrapped store error, got %v", result.Errors[0].Err)
	}
	if index.docCount() != 9 {
		t.Errorf("expected 9 documents in index, got %d", index.docCount())
	}
	if _, ok := index.stored("v3"); ok {
		t.Error("failed video must not be in the index")
	}
}

func TestSyncManyCountsMissingAsSuccess(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("v1", models.StatusPublished)

	coord := newTestCoordinator(store, index, 10)
	result, err := coord.SyncMany(context.Background(), []string{"v1", "ghost"}, Options{})
	if err != nil {
		t.Fatalf("SyncMany failed: %v", err)
	}
	if result.Successful != 2 || result.Failed != 0 {
		t.Errorf("missing video must count as success, got %+v", result)
	}
}

func TestSyncManyStopsBetweenChunksOnCancel(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()

	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("v%d", i)
		store.addVideo(id, models.StatusPublished)
		ids = append(ids, id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coord := newTestCoordinator(store, index, 2)
	result, err := coord.SyncMany(ctx, ids, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Successful != 0 || result.Failed != 0 {
		t.Errorf("no chunk should start after cancellation, got %+v", result)
	}
	if index.docCount() != 0 {
		t.Errorf("expected empty index after pre-cancelled sync, got %d docs", index.docCount())
	}
}

func TestSyncAllSyncsEveryLiveVideo(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("v1", models.StatusPublished)
	store.addVideo("v2", models.StatusInReview)
	deleted := store.addVideo("v3", models.StatusPublished)
	at := deleted.CreatedAt.AddDate(0, 0, 2)
	deleted.DeletedAt = &at

	coord := newTestCoordinator(store, index, 10)
	result, err := coord.SyncAll(context.Background(), Options{CalculateScores: true})
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if result.Failed != 0 {
		t.Errorf("expected no failures, got %+v", result.Errors)
	}
	if index.docCount() != 2 {
		t.Errorf("expected 2 live videos indexed, got %d", index.docCount())
	}
}

func TestSyncApprovedFiltersByStatus(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("pub", models.StatusPublished)
	store.addVideo("rev", models.StatusInReview)

	coord := newTestCoordinator(store, index, 10)
	if _, err := coord.SyncApproved(context.Background(), Options{}); err != nil {
		t.Fatalf("SyncApproved failed: %v", err)
	}
	if _, ok := index.stored("pub"); !ok {
		t.Error("published video missing from index")
	}
	if _, ok := index.stored("rev"); ok {
		t.Error("in_review video must not be synced by SyncApproved")
	}
}

func TestDeleteOne(t *testing.T) {
	store := newFakeStore()
	index := newFakeIndex()
	store.addVideo("v1", models.StatusPublished)

	coord := newTestCoordinator(store, index, 10)
	ctx := context.Background()

	if _, err := coord.SyncOne(ctx, "v1", Options{}); err != nil {
		t.Fatalf("SyncOne failed: %v", err)
	}
	if err := coord.DeleteOne(ctx, "v1"); err != nil {
		t.Fatalf("DeleteOne failed: %v", err)
	}
	if err := coord.DeleteOne(ctx, "v1"); err != nil {
		t.Errorf("second DeleteOne must succeed, got %v", err)
	}
	if err := coord.DeleteOne(ctx, ""); !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID for empty id, got %v", err)
	}
}
