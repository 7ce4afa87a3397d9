// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/jsbroks/splitscreen-sub000/internal/compaction"
	"github.com/jsbroks/splitscreen-sub000/internal/config"
	"github.com/jsbroks/splitscreen-sub000/internal/database"
	"github.com/jsbroks/splitscreen-sub000/internal/logging"
	"github.com/jsbroks/splitscreen-sub000/internal/search"
	syncer "github.com/jsbroks/splitscreen-sub000/internal/sync"
)

type fakeSearcher struct {
	lastCtx context.Context
	lastReq *search.Request
	result  *search.Result
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Result, error) {
	f.lastCtx = ctx
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSyncer struct {
	syncedIDs  []string
	deletedIDs []string
	oneDoc     *search.Document
	oneErr     error
	manyResult *syncer.BatchResult
}

func (f *fakeSyncer) SyncOne(_ context.Context, id string, _ syncer.Options) (*search.Document, error) {
	f.syncedIDs = append(f.syncedIDs, id)
	return f.oneDoc, f.oneErr
}

func (f *fakeSyncer) SyncMany(_ context.Context, ids []string, _ syncer.Options) (*syncer.BatchResult, error) {
	f.syncedIDs = append(f.syncedIDs, ids...)
	if f.manyResult != nil {
		return f.manyResult, nil
	}
	return &syncer.BatchResult{Successful: len(ids)}, nil
}

func (f *fakeSyncer) SyncAll(_ context.Context, _ syncer.Options) (*syncer.BatchResult, error) {
	return &syncer.BatchResult{Successful: 3}, nil
}

func (f *fakeSyncer) DeleteOne(_ context.Context, id string) error {
	if id == "" {
		return syncer.ErrMissingID
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeCompactor struct {
	lastParams compaction.Params
	result     *compaction.Result
	stats      *database.CompressionStats
}

func (f *fakeCompactor) Compact(_ context.Context, p compaction.Params) (*compaction.Result, error) {
	f.lastParams = p
	if f.result != nil {
		return f.result, nil
	}
	return &compaction.Result{}, nil
}

func (f *fakeCompactor) Stats(_ context.Context, _ time.Time) (*database.CompressionStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &database.CompressionStats{}, nil
}

func testRouter(searcher *fakeSearcher, sync *fakeSyncer, compactor *fakeCompactor) http.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Timeout:         10 * time.Second,
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}
	return NewRouter(NewHandler(searcher, sync, compactor, cfg))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRouterAttachesCorrelationID(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{}}
	router := testRouter(searcher, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searcher.lastCtx == nil {
		t.Fatal("search request never reached the searcher")
	}
	if id := logging.CorrelationIDFromContext(searcher.lastCtx); id == "" {
		t.Error("handler context carries no correlation ID")
	}
}

func TestHandleSearchBuildsRequest(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{IDs: []string{"v2", "v1"}, Total: 2}}
	router := testRouter(searcher, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/search?q=cats&status=published&tags=t1,t2&min_views=10&sort=_score,trending_score:desc", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searcher.lastReq == nil {
		t.Fatal("search request never reached the searcher")
	}
	if got := searcher.lastReq.FilterExpr(); got != "status:=published && tag_ids:=[t1,t2] && view_count:>=10" {
		t.Errorf("unexpected filter expression %q", got)
	}
	if got := searcher.lastReq.SortExpr(); got != "_score:desc,trending_score:desc" {
		t.Errorf("unexpected sort expression %q", got)
	}

	body := decodeResponse(t, rec)
	data := body["data"].(map[string]interface{})
	ids := data["ids"].([]interface{})
	if len(ids) != 2 || ids[0] != "v2" || ids[1] != "v1" {
		t.Errorf("rank order must be preserved, got %v", ids)
	}
}

func TestHandleSearchRejectsBadParams(t *testing.T) {
	router := testRouter(&fakeSearcher{result: &search.Result{}}, &fakeSyncer{}, &fakeCompactor{})

	for _, url := range []string{
		"/api/v1/search?min_views=lots",
		"/api/v1/search?transcoded=perhaps",
		"/api/v1/search?created_after=yesterday",
		"/api/v1/search?sort=trending_score:sideways",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestHandleSearchIndexUnavailable(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("search: %w", search.ErrUnavailable)}
	router := testRouter(searcher, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the index is unavailable, got %d", rec.Code)
	}
}

func TestHandleSyncValidatesBody(t *testing.T) {
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(`{"ids":[]}`))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ids must fail validation, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader("not json"))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body must be rejected, got %d", rec.Code)
	}
}

func TestHandleSyncReportsPartialFailures(t *testing.T) {
	sync := &fakeSyncer{manyResult: &syncer.BatchResult{
		Successful: 2,
		Failed:     1,
		Errors:     []syncer.ItemError{{ID: "v3", Err: fmt.Errorf("boom")}},
	}}
	router := testRouter(&fakeSearcher{}, sync, &fakeCompactor{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(`{"ids":["v1","v2","v3"]}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("partial failure is still 200, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	data := body["data"].(map[string]interface{})
	if data["failed"].(float64) != 1 {
		t.Errorf("expected failed=1, got %v", data["failed"])
	}
	errs := data["errors"].([]interface{})
	if len(errs) != 1 {
		t.Fatalf("expected one error entry, got %v", errs)
	}
}

func TestHandleSyncVideoNoOpReturnsNullDocument(t *testing.T) {
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/ghost", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("missing video sync must be a 200 no-op, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	if v, ok := body["data"]; ok && v != nil {
		t.Errorf("expected null document for a no-op sync, got %v", v)
	}
}

func TestHandleDeleteFromIndex(t *testing.T) {
	sync := &fakeSyncer{}
	router := testRouter(&fakeSearcher{}, sync, &fakeCompactor{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/index/v1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sync.deletedIDs) != 1 || sync.deletedIDs[0] != "v1" {
		t.Errorf("expected delete for v1, got %v", sync.deletedIDs)
	}
}

func TestHandleCompactionRunPassesParams(t *testing.T) {
	compactor := &fakeCompactor{result: &compaction.Result{VideosProcessed: 2, ViewsCompressed: 17}}
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, compactor)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compaction/run",
		strings.NewReader(`{"older_than_days":60,"batch_size":50,"ids":["v1"]}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if compactor.lastParams.BatchSize != 50 || len(compactor.lastParams.IDs) != 1 {
		t.Errorf("params not passed through: %+v", compactor.lastParams)
	}
	if compactor.lastParams.OlderThan.IsZero() {
		t.Error("older_than_days must set a cutoff")
	}

	body := decodeResponse(t, rec)
	data := body["data"].(map[string]interface{})
	if data["views_compressed"].(float64) != 17 {
		t.Errorf("unexpected views_compressed %v", data["views_compressed"])
	}
}

func TestHandleCompactionRunRejectsNegativeValues(t *testing.T) {
	compactor := &fakeCompactor{}
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, compactor)

	for _, payload := range []string{
		`{"older_than_days":-1}`,
		`{"batch_size":-5}`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/compaction/run", strings.NewReader(payload))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: expected 400, got %d: %s", payload, rec.Code, rec.Body.String())
		}
	}
	if !compactor.lastParams.OlderThan.IsZero() || compactor.lastParams.BatchSize != 0 {
		t.Errorf("rejected request reached the compactor: %+v", compactor.lastParams)
	}
}

func TestHandleCompactionStats(t *testing.T) {
	compactor := &fakeCompactor{stats: &database.CompressionStats{
		TotalViews:       100,
		OldViews:         75,
		RecentViews:      25,
		PotentialSavings: 0.75,
	}}
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, compactor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compaction/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	data := body["data"].(map[string]interface{})
	if data["potential_savings"].(float64) != 0.75 {
		t.Errorf("unexpected savings %v", data["potential_savings"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&fakeSearcher{}, &fakeSyncer{}, &fakeCompactor{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
