package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

var validSortColumns = map[string]bool{
	domain.SortByComments:  true,
	domain.SortByLikes:     true,
	domain.SortByPublished: true,
}

var validSortDirections = map[string]bool{
	domain.SortAsc:  true,
	domain.SortDesc: true,
}

// QueryService is the read side: sorted, filtered, paginated access to
// mirrored posts plus the latest run's metadata. It never writes.
type QueryService struct {
	posts  PostStore
	runs   RunStore
	logger *slog.Logger
}

func NewQueryService(posts PostStore, runs RunStore, logger *slog.Logger) *QueryService {
	return &QueryService{
		posts:  posts,
		runs:   runs,
		logger: logger.With("component", "query"),
	}
}

// GetPage returns one page of post summaries. Unrecognized sort tokens
// and nonsensical page math degrade to an empty page rather than an
// error: caller input must never take the read path down.
func (s *QueryService) GetPage(ctx context.Context, req domain.PageRequest) ([]domain.PostSummary, error) {
	if !validSortColumns[req.SortColumn] || !validSortDirections[req.SortDirection] {
		s.logger.Warn("rejected page request",
			"sort_column", req.SortColumn,
			"sort_direction", req.SortDirection,
		)
		return []domain.PostSummary{}, nil
	}
	if req.Page < 1 || req.PageSize < 1 {
		s.logger.Warn("rejected page request", "page", req.Page, "page_size", req.PageSize)
		return []domain.PostSummary{}, nil
	}

	return s.posts.Select(ctx, req)
}

// GetTotalCount returns the number of distinct posts stored.
func (s *QueryService) GetTotalCount(ctx context.Context) (int, error) {
	return s.posts.Count(ctx)
}

// GetLastRun returns the most recent run's metadata, or nil before any
// run has started.
func (s *QueryService) GetLastRun(ctx context.Context) (*domain.Run, error) {
	return s.runs.Latest(ctx)
}

// GetPageData bundles everything a rendering layer needs in one call.
func (s *QueryService) GetPageData(ctx context.Context, req domain.PageRequest) (*domain.PageData, error) {
	items, err := s.GetPage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	count, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("get total count: %w", err)
	}

	lastRun, err := s.runs.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("get last run: %w", err)
	}

	return &domain.PageData{
		Items:      items,
		LastRun:    lastRun,
		TotalCount: count,
	}, nil
}
