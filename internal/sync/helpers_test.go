// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package sync

import (
	"bytes"
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/models"
	"github.com/jsbroks/splitscreen-sub000/internal/scoring"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
)

func testCalculator() *scoring.Calculator {
	return scoring.NewCalculator(config.ScoringConfig{
		LikeWeight:       10,
		DislikeWeight:    5,
		RecentViewWeight: 10,
		RecentLikeWeight: 50,
		WeeklyViewWeight: 5,
		WeeklyLikeWeight: 25,
		BaselineWeight:   0.1,
		DecayWindowDays:  30,
		DecayFloor:       0.1,
	})
}

// fakeStore is an in-memory Store with injectable per-id failures.
type fakeStore struct {
	mu       stdsync.Mutex
	videos   map[string]*models.Video
	counts   map[string]*database.EngagementCounts
	tags     map[string][]models.Tag
	creators map[string][]models.Creator
	failGet  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		videos:   make(map[string]*models.Video),
		counts:   make(map[string]*database.EngagementCounts),
		tags:     make(map[string][]models.Tag),
		creators: make(map[string][]models.Creator),
		failGet:  make(map[string]error),
	}
}

func (s *fakeStore) addVideo(id string, status models.VideoStatus) *models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &models.Video{
		ID:           id,
		Title:        "video " + id,
		Status:       status,
		UploadedByID: "u-1",
		CreatedAt:    time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC),
	}
	s.videos[id] = v
	s.counts[id] = &database.EngagementCounts{}
	return v
}

func (s *fakeStore) setCounts(id string, c *database.EngagementCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[id] = c
}

func (s *fakeStore) GetVideo(_ context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failGet[id]; ok {
		return nil, err
	}
	v, ok := s.videos[id]
	if !ok || v.DeletedAt != nil {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) GetEngagementCounts(_ context.Context, videoID string, _ time.Time) (*database.EngagementCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counts[videoID]; ok {
		return c, nil
	}
	return &database.EngagementCounts{}, nil
}

func (s *fakeStore) GetVideoTags(_ context.Context, videoID string) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[videoID], nil
}

func (s *fakeStore) GetVideoCreators(_ context.Context, videoID string) ([]models.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creators[videoID], nil
}

func (s *fakeStore) ListVideoIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, v := range s.videos {
		if v.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeStore) ListVideoIDsByStatus(_ context.Context, status models.VideoStatus) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, v := range s.videos {
		if v.DeletedAt == nil && v.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeStore) ListRecentVideoIDs(_ context.Context, _ time.Time) ([]string, error) {
	return s.ListVideoIDs(context.Background())
}

// fakeIndex records upserted documents and deletes in memory.
type fakeIndex struct {
	mu      stdsync.Mutex
	docs    map[string][]byte
	deletes []string
	failAll error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string][]byte)}
}

func (f *fakeIndex) Upsert(_ context.Context, doc *search.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	raw, err := doc.Marshal()
	if err != nil {
		return err
	}
	f.docs[doc.ID] = raw
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.deletes = append(f.deletes, id)
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) stored(id string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.docs[id]
	return raw, ok
}

func (f *fakeIndex) docCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func newTestCoordinator(store *fakeStore, index *fakeIndex, batchSize int) *Coordinator {
	cfg := config.SyncConfig{BatchSize: batchSize}
	return NewCoordinator(store, index, testCalculator(), cfg)
}

func sameBytes(a, b []byte) bool {
	return bytes.Equal(a, b)
}

var errBoom = fmt.Errorf("store exploded")
