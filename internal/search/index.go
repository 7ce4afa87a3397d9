// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/metrics"
)

// ErrUnavailable is returned when the index cannot be reached: the request
// timed out or the circuit breaker is open. Callers may retry; bulk paths
// record it per item.
var ErrUnavailable = errors.New("search index unavailable")

// Client is an idempotent wrapper over the bleve index. Safe for concurrent
// use. Every operation is bounded by the configured request timeout and
// guarded by a circuit breaker so a stalled index cannot stall callers.
type Client struct {
	index   bleve.Index
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// Open opens or creates the bleve index at cfg.IndexPath. An empty path
// opens an in-memory index (used by tests).
func Open(cfg *config.SearchConfig) (*Client, error) {
	var (
		idx bleve.Index
		err error
	)

	if cfg.IndexPath == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
	} else {
		idx, err = bleve.Open(cfg.IndexPath)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(cfg.IndexPath, buildIndexMapping())
			if err != nil {
				return nil, fmt.Errorf("create index: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
	}

	settings := gobreaker.Settings{
		Name:     "search-index",
		Interval: cfg.BreakerCooldown,
		Timeout:  cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.IndexBreakerOpen.Set(1)
			} else {
				metrics.IndexBreakerOpen.Set(0)
			}
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Index circuit breaker state changed")
		},
	}

	c := &Client{
		index:   idx,
		timeout: cfg.RequestTimeout,
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
	c.publishDocCount()
	return c, nil
}

// Close closes the underlying index.
func (c *Client) Close() error {
	return c.index.Close()
}

// Upsert stores the document, replacing any existing document with the same
// id wholesale. Idempotent.
func (c *Client) Upsert(ctx context.Context, doc *Document) error {
	fields, err := doc.fields()
	if err != nil {
		return fmt.Errorf("serialize document %s: %w", doc.ID, err)
	}

	start := time.Now()
	_, err = c.execute(ctx, func() (interface{}, error) {
		return nil, c.index.Index(doc.ID, fields)
	})
	metrics.ObserveIndexOp("upsert", start, err)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	c.publishDocCount()
	return nil
}

// Delete removes a document by id. Deleting something already gone is a
// success: the engine's not-found response is swallowed and logged.
func (c *Client) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := c.execute(ctx, func() (interface{}, error) {
		return nil, c.index.Delete(id)
	})
	if err != nil && isNotFound(err) {
		logging.Ctx(ctx).Debug().Str("video_id", id).Msg("Index delete for absent document")
		err = nil
	}
	metrics.ObserveIndexOp("delete", start, err)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	c.publishDocCount()
	return nil
}

// Search executes a filter/sort/paginated query and returns ranked ids.
// The returned order is the engine's ranking and must be preserved by all
// downstream consumers.
func (c *Client) Search(ctx context.Context, req *Request) (*Result, error) {
	bleveQuery, err := translateQuery(req)
	if err != nil {
		return nil, err
	}

	searchReq := bleve.NewSearchRequestOptions(bleveQuery, req.Limit, req.Offset, false)
	searchReq.SortBy(translateSorts(req.Sorts))

	start := time.Now()
	res, err := c.execute(ctx, func() (interface{}, error) {
		return c.index.Search(searchReq)
	})
	metrics.ObserveIndexOp("search", start, err)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	searchRes := res.(*bleve.SearchResult)
	result := &Result{
		IDs:   make([]string, 0, len(searchRes.Hits)),
		Total: searchRes.Total,
	}
	for _, hit := range searchRes.Hits {
		result.IDs = append(result.IDs, hit.ID)
	}
	return result, nil
}

// DocCount returns the number of documents in the index.
func (c *Client) DocCount() (uint64, error) {
	return c.index.DocCount()
}

// publishDocCount refreshes the document-count gauge after a write. A count
// failure only skips the refresh.
func (c *Client) publishDocCount() {
	n, err := c.index.DocCount()
	if err != nil {
		return
	}
	metrics.IndexDocuments.Set(float64(n))
}

// execute runs fn under the circuit breaker with the request timeout
// applied. A timed-out or breaker-rejected call maps to ErrUnavailable.
func (c *Client) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		type outcome struct {
			res interface{}
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			r, err := fn()
			done <- outcome{res: r, err: err}
		}()

		select {
		case out := <-done:
			return out.res, out.err
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, ctx.Err())
		}
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}
	return res, err
}

// isNotFound reports whether an engine error means "document absent".
func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

// translateQuery converts a Request into a bleve query: the free-text part
// OR-matched across its query fields, AND-combined with every filter
// clause.
func translateQuery(req *Request) (query.Query, error) {
	var base query.Query
	switch {
	case req.Query == "":
		base = bleve.NewMatchAllQuery()
	case len(req.QueryBy) == 0:
		base = bleve.NewMatchQuery(req.Query)
	default:
		parts := make([]query.Query, 0, len(req.QueryBy))
		for _, field := range req.QueryBy {
			mq := bleve.NewMatchQuery(req.Query)
			mq.SetField(field)
			parts = append(parts, mq)
		}
		base = bleve.NewDisjunctionQuery(parts...)
	}

	if len(req.Filters) == 0 {
		return base, nil
	}

	conjuncts := []query.Query{base}
	for _, f := range req.Filters {
		q, err := translateFilter(f)
		if err != nil {
			return nil, err
		}
		conjuncts = append(conjuncts, q)
	}
	return bleve.NewConjunctionQuery(conjuncts...), nil
}

// translateFilter converts one filter clause into a bleve query.
func translateFilter(f Filter) (query.Query, error) {
	if len(f.Values) == 0 {
		return nil, fmt.Errorf("filter on %s has no values", f.Field)
	}

	switch f.Op {
	case OpEquals:
		return termOrBoolQuery(f.Field, f.Values[0]), nil
	case OpAnyOf:
		parts := make([]query.Query, 0, len(f.Values))
		for _, v := range f.Values {
			parts = append(parts, termOrBoolQuery(f.Field, v))
		}
		return bleve.NewDisjunctionQuery(parts...), nil
	case OpGreater, OpGreaterEq, OpLess, OpLessEq:
		return numericRangeQuery(f)
	default:
		return nil, fmt.Errorf("unknown filter operator %q on %s", f.Op, f.Field)
	}
}

// termOrBoolQuery builds an exact-match query; "true"/"false" values match
// boolean fields.
func termOrBoolQuery(field, value string) query.Query {
	if value == "true" || value == "false" {
		q := bleve.NewBoolFieldQuery(value == "true")
		q.SetField(field)
		return q
	}
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

// numericRangeQuery builds a one-sided numeric range from a comparison
// clause.
func numericRangeQuery(f Filter) (query.Query, error) {
	n, err := strconv.ParseFloat(f.Values[0], 64)
	if err != nil {
		return nil, fmt.Errorf("filter on %s: %q is not numeric", f.Field, f.Values[0])
	}

	var (
		lower, upper         *float64
		lowerIncl, upperIncl *bool
	)
	truth, falsy := true, false
	switch f.Op {
	case OpGreater:
		lower, lowerIncl = &n, &falsy
	case OpGreaterEq:
		lower, lowerIncl = &n, &truth
	case OpLess:
		upper, upperIncl = &n, &falsy
	case OpLessEq:
		upper, upperIncl = &n, &truth
	}

	q := bleve.NewNumericRangeInclusiveQuery(lower, upper, lowerIncl, upperIncl)
	q.SetField(f.Field)
	return q, nil
}

// translateSorts maps sort clauses to bleve's sort strings ("-field" for
// descending, "_score" for relevance). Empty input defaults to relevance.
func translateSorts(sorts []Sort) []string {
	if len(sorts) == 0 {
		return []string{"-" + SortFieldRelevance}
	}
	out := make([]string, 0, len(sorts))
	for _, s := range sorts {
		if s.Desc {
			out = append(out, "-"+s.Field)
		} else {
			out = append(out, s.Field)
		}
	}
	return out
}

// buildIndexMapping defines how document fields are analyzed: exact-match
// keyword fields for ids and enums, text fields for names and titles,
// numeric and boolean fields for everything sortable/filterable.
func buildIndexMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	textField := bleve.NewTextFieldMapping()
	numField := bleve.NewNumericFieldMapping()
	boolField := bleve.NewBooleanFieldMapping()

	doc := bleve.NewDocumentMapping()

	for _, field := range []string{
		"status", "transcode_status", "uploaded_by_id",
		"creator_id", "featured_creator_ids", "tag_ids", "tag_slugs",
	} {
		doc.AddFieldMappingsAt(field, keywordField)
	}

	for _, field := range []string{
		"title", "description", "tag_names",
		"creator_username", "creator_display_name", "creator_aliases",
		"featured_creator_usernames", "featured_creator_display_names",
		"featured_creator_aliases", "uploaded_by_username",
	} {
		doc.AddFieldMappingsAt(field, textField)
	}

	for _, field := range []string{
		"duration_seconds", "report_count",
		"view_count", "like_count", "dislike_count",
		"popularity_score", "trending_score", "engagement_rate",
		"views_last_24h", "views_last_7d", "likes_last_24h", "likes_last_7d",
		"created_at", "updated_at",
	} {
		doc.AddFieldMappingsAt(field, numField)
	}

	for _, field := range []string{"has_thumbnail", "is_transcoded", "has_active_reports"} {
		doc.AddFieldMappingsAt(field, boolField)
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
