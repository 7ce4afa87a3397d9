// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package search

import (
	"strconv"
	"time"
)

// defaultLimit is the page size when the caller doesn't set one.
const defaultLimit = 20

// QueryBuilder assembles filter, sort, and pagination state into a Request
// without string concatenation at call sites. Methods mutate the builder
// and return it for chaining:
//
//	req := search.NewQueryBuilder().
//	    Text("speedrun", "title", "description", "tag_names").
//	    Status("published").
//	    Tags("t1", "t2").
//	    SortByRelevance().
//	    SortByField("trending_score", true).
//	    Page(0, 20).
//	    Build()
//
// Helper methods ignore empty inputs: an empty tag list contributes no
// clause rather than an always-false one.
type QueryBuilder struct {
	req       Request
	relevance bool
}

// NewQueryBuilder creates a builder with default pagination.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{req: Request{Limit: defaultLimit}}
}

// Text sets the free-text query and the fields it searches. An empty query
// leaves the request as match-all.
func (b *QueryBuilder) Text(query string, fields ...string) *QueryBuilder {
	if query == "" {
		return b
	}
	b.req.Query = query
	b.req.QueryBy = fields
	return b
}

// Status filters by lifecycle state. Empty status contributes no clause.
func (b *QueryBuilder) Status(status string) *QueryBuilder {
	return b.equals("status", status)
}

// Tags filters to videos carrying any of the given tag ids.
func (b *QueryBuilder) Tags(tagIDs ...string) *QueryBuilder {
	return b.anyOf("tag_ids", tagIDs)
}

// FeaturedCreators filters to videos featuring any of the given creators.
func (b *QueryBuilder) FeaturedCreators(creatorIDs ...string) *QueryBuilder {
	return b.anyOf("featured_creator_ids", creatorIDs)
}

// Creator filters by the primary featured creator.
func (b *QueryBuilder) Creator(creatorID string) *QueryBuilder {
	return b.equals("creator_id", creatorID)
}

// UploadedBy filters by uploader.
func (b *QueryBuilder) UploadedBy(userID string) *QueryBuilder {
	return b.equals("uploaded_by_id", userID)
}

// Transcoded filters by transcode completion.
func (b *QueryBuilder) Transcoded(done bool) *QueryBuilder {
	return b.equals("is_transcoded", strconv.FormatBool(done))
}

// MinViews filters to videos with at least n total views.
func (b *QueryBuilder) MinViews(n int64) *QueryBuilder {
	b.req.Filters = append(b.req.Filters, Filter{
		Field: "view_count", Op: OpGreaterEq, Values: []string{strconv.FormatInt(n, 10)},
	})
	return b
}

// CreatedAfter filters to videos created after t.
func (b *QueryBuilder) CreatedAfter(t time.Time) *QueryBuilder {
	b.req.Filters = append(b.req.Filters, Filter{
		Field: "created_at", Op: OpGreater, Values: []string{strconv.FormatInt(t.Unix(), 10)},
	})
	return b
}

// SortByRelevance orders results by text relevance. Regardless of where it
// appears in the chain, relevance always sorts ahead of field sorts.
func (b *QueryBuilder) SortByRelevance() *QueryBuilder {
	b.relevance = true
	return b
}

// SortByField appends a field sort. The first appended sort has priority.
func (b *QueryBuilder) SortByField(field string, desc bool) *QueryBuilder {
	if field == "" || field == SortFieldRelevance {
		return b
	}
	b.req.Sorts = append(b.req.Sorts, Sort{Field: field, Desc: desc})
	return b
}

// Page sets the result window. Non-positive limits fall back to the
// default page size.
func (b *QueryBuilder) Page(offset, limit int) *QueryBuilder {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	b.req.Offset = offset
	b.req.Limit = limit
	return b
}

// Build snapshots the accumulated state into a Request. The builder remains
// usable; the returned request does not alias builder state.
func (b *QueryBuilder) Build() *Request {
	req := Request{
		Query:   b.req.Query,
		QueryBy: append([]string(nil), b.req.QueryBy...),
		Filters: append([]Filter(nil), b.req.Filters...),
		Offset:  b.req.Offset,
		Limit:   b.req.Limit,
	}

	if b.relevance {
		req.Sorts = append(req.Sorts, Sort{Field: SortFieldRelevance, Desc: true})
	}
	req.Sorts = append(req.Sorts, b.req.Sorts...)

	return &req
}

// equals appends a single-value equality clause, ignoring empty values.
func (b *QueryBuilder) equals(field, value string) *QueryBuilder {
	if value == "" {
		return b
	}
	b.req.Filters = append(b.req.Filters, Filter{Field: field, Op: OpEquals, Values: []string{value}})
	return b
}

// anyOf appends an OR-group clause, ignoring empty lists and empty
// elements.
func (b *QueryBuilder) anyOf(field string, values []string) *QueryBuilder {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return b
	}
	b.req.Filters = append(b.req.Filters, Filter{Field: field, Op: OpAnyOf, Values: kept})
	return b
}
