package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

type stubReader struct {
	lastReq domain.PageRequest
	data    *domain.PageData
	count   int
	run     *domain.Run
	err     error
}

func (r *stubReader) GetPageData(ctx context.Context, req domain.PageRequest) (*domain.PageData, error) {
	r.lastReq = req
	return r.data, r.err
}

func (r *stubReader) GetTotalCount(ctx context.Context) (int, error) {
	return r.count, r.err
}

func (r *stubReader) GetLastRun(ctx context.Context) (*domain.Run, error) {
	return r.run, r.err
}

func newTestServer(reader PostReader) *Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(":0", reader, logger)
}

func TestGetPosts_DefaultsAndPayload(t *testing.T) {
	reader := &stubReader{
		data: &domain.PageData{
			Items: []domain.PostSummary{
				{Title: "Episode 1", CommentCount: 4, LikeCount: 17, URL: "https://example.com/1"},
			},
			TotalCount: 25,
		},
	}
	srv := newTestServer(reader)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.PageRequest{
		Page:          1,
		SortColumn:    domain.SortByPublished,
		SortDirection: domain.SortDesc,
		PageSize:      10,
	}, reader.lastReq)

	var data domain.PageData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 25, data.TotalCount)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Episode 1", data.Items[0].Title)
}

func TestGetPosts_PassesQueryParamsThrough(t *testing.T) {
	reader := &stubReader{data: &domain.PageData{Items: []domain.PostSummary{}}}
	srv := newTestServer(reader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=3&sort=commentCount&dir=asc&search=Episode&page_size=5", nil)
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PageRequest{
		Page:          3,
		SortColumn:    domain.SortByComments,
		SortDirection: domain.SortAsc,
		SearchText:    "Episode",
		PageSize:      5,
	}, reader.lastReq)
}

func TestGetPosts_BogusSortIsForwardedNotRejected(t *testing.T) {
	// Validation lives in the query service; the handler only parses.
	reader := &stubReader{data: &domain.PageData{Items: []domain.PostSummary{}}}
	srv := newTestServer(reader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?sort=not_a_column", nil)
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not_a_column", reader.lastReq.SortColumn)
}

func TestGetPosts_ClampsPageSize(t *testing.T) {
	reader := &stubReader{data: &domain.PageData{}}
	srv := newTestServer(reader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?page_size=10000", nil)
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPageSize, reader.lastReq.PageSize)
}

func TestGetCount(t *testing.T) {
	srv := newTestServer(&stubReader{count: 42})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/count", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42, body["totalCount"])
}

func TestGetLastRun_NoRunsYet(t *testing.T) {
	srv := newTestServer(&stubReader{})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLastRun_ReturnsLedgerRow(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	duration := 9.25
	items := 120
	srv := newTestServer(&stubReader{run: &domain.Run{
		StartedAt:       startedAt,
		DurationSeconds: &duration,
		ItemsRetrieved:  &items,
	}})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var run domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.True(t, run.StartedAt.Equal(startedAt))
	require.NotNil(t, run.DurationSeconds)
	assert.Equal(t, 9.25, *run.DurationSeconds)
	assert.Nil(t, run.ResumeCursor)
}
