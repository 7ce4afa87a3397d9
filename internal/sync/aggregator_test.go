// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
)

func TestAggregateIncludesBaseCounter(t *testing.T) {
	store := newFakeStore()
	v := store.addVideo("v1", models.StatusPublished)
	v.BaseViewCount = 1000
	store.counts["v1"] = &database.EngagementCounts{
		Views:    5,
		Views24h: 2,
		Views7d:  4,
		Likes:    3,
		Likes24h: 1,
		Likes7d:  2,
		Dislikes: 1,
	}

	agg := NewAggregator(store)
	video, m, err := agg.Aggregate(context.Background(), "v1", time.Now())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if video.ID != "v1" {
		t.Errorf("unexpected video %s", video.ID)
	}
	if m.TotalViews != 1005 {
		t.Errorf("total views must include the base counter, got %d", m.TotalViews)
	}
	if m.ViewsLast24h != 2 || m.ViewsLast7d != 4 {
		t.Errorf("windowed views must not include the base counter, got %d/%d", m.ViewsLast24h, m.ViewsLast7d)
	}
	if m.TotalLikes != 3 || m.TotalDislikes != 1 {
		t.Errorf("unexpected reaction counts %d/%d", m.TotalLikes, m.TotalDislikes)
	}
}

func TestAggregateNotFoundPassthrough(t *testing.T) {
	agg := NewAggregator(newFakeStore())
	_, _, err := agg.Aggregate(context.Background(), "ghost", time.Now())
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
