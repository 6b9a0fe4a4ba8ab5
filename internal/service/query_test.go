package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
	"github.com/toBeOfUse/patreon-post-tracker/internal/service/mocks"
)

type QueryServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	posts *mocks.MockPostStore
	runs  *mocks.MockRunStore

	service *QueryService
}

func (s *QueryServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.posts = mocks.NewMockPostStore(s.ctrl)
	s.runs = mocks.NewMockRunStore(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewQueryService(s.posts, s.runs, logger)
}

func (s *QueryServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestQueryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceTestSuite))
}

func (s *QueryServiceTestSuite) TestGetPage_DelegatesValidRequest() {
	ctx := context.Background()
	req := domain.PageRequest{
		Page:          2,
		SortColumn:    domain.SortByComments,
		SortDirection: domain.SortDesc,
		SearchText:    "",
		PageSize:      10,
	}

	want := []domain.PostSummary{
		{Title: "Episode 12", CommentCount: 40, LikeCount: 7, URL: "https://example.com/12"},
	}
	s.posts.EXPECT().Select(ctx, req).Return(want, nil)

	got, err := s.service.GetPage(ctx, req)

	s.NoError(err)
	s.Equal(want, got)
}

func (s *QueryServiceTestSuite) TestGetPage_UnknownSortColumnReturnsEmpty() {
	// The store must never see the bad request.
	got, err := s.service.GetPage(context.Background(), domain.PageRequest{
		Page:          1,
		SortColumn:    "not_a_column",
		SortDirection: domain.SortDesc,
		PageSize:      10,
	})

	s.NoError(err)
	s.Empty(got)
	s.NotNil(got)
}

func (s *QueryServiceTestSuite) TestGetPage_UnknownSortDirectionReturnsEmpty() {
	got, err := s.service.GetPage(context.Background(), domain.PageRequest{
		Page:          1,
		SortColumn:    domain.SortByLikes,
		SortDirection: "sideways",
		PageSize:      10,
	})

	s.NoError(err)
	s.Empty(got)
}

func (s *QueryServiceTestSuite) TestGetPage_BadPageMathReturnsEmpty() {
	got, err := s.service.GetPage(context.Background(), domain.PageRequest{
		Page:          0,
		SortColumn:    domain.SortByPublished,
		SortDirection: domain.SortAsc,
		PageSize:      10,
	})

	s.NoError(err)
	s.Empty(got)

	got, err = s.service.GetPage(context.Background(), domain.PageRequest{
		Page:          1,
		SortColumn:    domain.SortByPublished,
		SortDirection: domain.SortAsc,
		PageSize:      0,
	})

	s.NoError(err)
	s.Empty(got)
}

func (s *QueryServiceTestSuite) TestGetPageData_BundlesReads() {
	ctx := context.Background()
	req := domain.PageRequest{
		Page:          1,
		SortColumn:    domain.SortByPublished,
		SortDirection: domain.SortDesc,
		PageSize:      10,
	}

	items := []domain.PostSummary{{Title: "Special"}}
	startedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &domain.Run{StartedAt: startedAt}

	s.posts.EXPECT().Select(ctx, req).Return(items, nil)
	s.posts.EXPECT().Count(ctx).Return(25, nil)
	s.runs.EXPECT().Latest(ctx).Return(run, nil)

	data, err := s.service.GetPageData(ctx, req)

	s.NoError(err)
	s.Equal(items, data.Items)
	s.Equal(25, data.TotalCount)
	s.Equal(run, data.LastRun)
}

func (s *QueryServiceTestSuite) TestGetPageData_InvalidSortStillReportsTotals() {
	ctx := context.Background()
	req := domain.PageRequest{
		Page:          1,
		SortColumn:    "teaser_text",
		SortDirection: domain.SortAsc,
		PageSize:      10,
	}

	s.posts.EXPECT().Count(ctx).Return(3, nil)
	s.runs.EXPECT().Latest(ctx).Return(nil, nil)

	data, err := s.service.GetPageData(ctx, req)

	s.NoError(err)
	s.Empty(data.Items)
	s.Equal(3, data.TotalCount)
	s.Nil(data.LastRun)
}

func (s *QueryServiceTestSuite) TestGetTotalCountAndLastRun() {
	ctx := context.Background()

	s.posts.EXPECT().Count(ctx).Return(7, nil)
	count, err := s.service.GetTotalCount(ctx)
	s.NoError(err)
	s.Equal(7, count)

	s.runs.EXPECT().Latest(ctx).Return(nil, nil)
	run, err := s.service.GetLastRun(ctx)
	s.NoError(err)
	s.Nil(run)
}
