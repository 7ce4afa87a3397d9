// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

// Package models defines the domain types shared across the store, sync,
// scoring, and search packages.
package models

import (
	"fmt"
	"time"
)

// VideoStatus is the lifecycle state of a video.
type VideoStatus string

const (
	StatusCreated    VideoStatus = "created"
	StatusProcessing VideoStatus = "processing"
	StatusInReview   VideoStatus = "in_review"
	StatusPublished  VideoStatus = "published"
	StatusRejected   VideoStatus = "rejected"
	StatusFailed     VideoStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s VideoStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusProcessing, StatusInReview, StatusPublished, StatusRejected, StatusFailed:
		return true
	}
	return false
}

// Video is the primary transactional record projected into the search index.
// Optional attributes are pointers so the document builder can distinguish
// "absent" from zero values.
type Video struct {
	ID                 string
	Title              string
	Description        *string
	Status             VideoStatus
	UploadedByID       string
	UploadedByUsername *string
	DurationSeconds    *int
	Width              *int
	Height             *int
	HasThumbnail       *bool
	IsTranscoded       *bool
	TranscodeStatus    *string
	ReportCount        *int
	HasActiveReports   *bool

	// BaseViewCount absorbs compacted view rows. Non-negative, never decreases.
	BaseViewCount int64

	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReactionType is the kind of reaction a viewer left on a video.
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// AttributionKey identifies who produced an engagement event: an
// authenticated user or an anonymous fingerprint, never both.
type AttributionKey struct {
	UserID        string
	FingerprintID string
}

// UserKey builds an attribution key for an authenticated user.
func UserKey(userID string) AttributionKey {
	return AttributionKey{UserID: userID}
}

// AnonymousKey builds an attribution key for an anonymous fingerprint.
func AnonymousKey(fingerprintID string) AttributionKey {
	return AttributionKey{FingerprintID: fingerprintID}
}

// Valid reports whether exactly one of the two identifiers is set.
func (k AttributionKey) Valid() bool {
	return (k.UserID != "") != (k.FingerprintID != "")
}

// String returns the canonical storage form: "user:<id>" or "anon:<id>".
// The canonical form is what uniqueness and dedup constraints key on.
func (k AttributionKey) String() string {
	if k.UserID != "" {
		return fmt.Sprintf("user:%s", k.UserID)
	}
	return fmt.Sprintf("anon:%s", k.FingerprintID)
}

// ViewEvent is an immutable view fact for a video.
type ViewEvent struct {
	ID          string
	VideoID     string
	Attribution AttributionKey
	CreatedAt   time.Time
}

// Reaction is a like/dislike for a video. At most one row exists per
// (video, attribution key); re-reacting replaces the type in place.
type Reaction struct {
	ID          string
	VideoID     string
	Attribution AttributionKey
	Type        ReactionType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag is a label attached to a video.
type Tag struct {
	ID   string
	Name string
	Slug string
}

// Creator is a person featured in a video.
type Creator struct {
	ID          string
	Username    string
	DisplayName *string
	Aliases     []string
}

// AggregatedMetrics holds the windowed engagement figures for one video.
// TotalViews already includes the base counter.
type AggregatedMetrics struct {
	TotalViews    int64
	ViewsLast24h  int64
	ViewsLast7d   int64
	TotalLikes    int64
	LikesLast24h  int64
	LikesLast7d   int64
	TotalDislikes int64
}

// Scores holds the derived ranking figures for one video.
type Scores struct {
	Popularity     float64
	Trending       float64
	EngagementRate float64
}
