package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/toBeOfUse/patreon-post-tracker/internal/config"
	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// IngestService mirrors the remote feed into the post store, one bounded
// run at a time. Each run sweeps the front of the feed for fresh counter
// values, then continues the historical backfill from wherever the
// previous run's sweep stopped, so a full mirror is reached across many
// runs without ever exceeding the per-run page budgets.
type IngestService struct {
	feed      FeedClient
	posts     PostStore
	runs      RunStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	config    config.SyncConfig
}

func NewIngestService(
	feed FeedClient,
	posts PostStore,
	runs RunStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *IngestService {
	return &IngestService{
		feed:      feed,
		posts:     posts,
		runs:      runs,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "ingest"),
		config:    cfg,
	}
}

// Sync performs one ingestion run. Faults inside a run degrade: a failed
// page fetch ends that phase, a failed page store is counted and skipped,
// and a failed ledger finalize is reported without undoing any post
// writes. The only hard errors are failing to read or write the ledger
// row before any fetching starts.
func (s *IngestService) Sync(ctx context.Context) (*domain.RunStats, error) {
	startedAt := time.Now().UTC()
	stats := &domain.RunStats{StartedAt: startedAt}

	// The prior cursor must be snapshotted before this run writes its own
	// ledger row, so the resumption point can never be this run itself.
	prior, err := s.runs.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("read latest run: %w", err)
	}

	if err := s.runs.Begin(ctx, startedAt); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}

	s.logger.Info("starting run",
		"recent_budget", s.config.RecentPageBudget,
		"history_budget", s.config.HistoryPageBudget,
	)

	recentEnd := s.sweep(ctx, "", s.config.RecentPageBudget, &stats.RecentPages, stats)

	historyStart := recentEnd
	if prior != nil && prior.ResumeCursor != nil {
		historyStart = *prior.ResumeCursor
	}

	var resume *string
	if historyStart != "" {
		historyEnd := s.sweep(ctx, historyStart, s.config.HistoryPageBudget, &stats.HistoryPages, stats)
		if historyEnd != "" {
			resume = &historyEnd
		}
	}
	stats.ResumeCursor = resume

	stats.Duration = time.Since(startedAt)
	if err := s.runs.Complete(ctx, startedAt, stats.Duration.Seconds(), stats.ItemsRetrieved, resume); err != nil {
		// Already-committed post upserts stand regardless.
		stats.StorageFaults++
		s.logger.Error("failed to finalize run", "error", err)
	}

	s.logger.Info("run completed",
		"recent_pages", stats.RecentPages,
		"history_pages", stats.HistoryPages,
		"items", stats.ItemsRetrieved,
		"fetch_faults", stats.FetchFaults,
		"storage_faults", stats.StorageFaults,
		"published", stats.Published,
		"backfill_done", resume == nil,
		"duration", stats.Duration,
	)

	return stats, nil
}

// sweep follows "next" links from cursor for at most budget pages,
// storing every page it gets. It returns the first cursor it did not
// visit: the feed's next link when the budget ran out, the failed cursor
// after a fetch fault, or "" when the feed itself ended.
func (s *IngestService) sweep(ctx context.Context, cursor string, budget int, pages *int, stats *domain.RunStats) string {
	for i := 0; i < budget; i++ {
		page, err := s.feed.FetchPage(ctx, cursor)
		if err != nil {
			stats.FetchFaults++
			s.logger.Warn("page fetch failed, ending phase", "cursor", cursor, "error", err)
			return cursor
		}

		*pages++
		stats.ItemsRetrieved += len(page.Posts)
		s.storePage(ctx, page.Posts, stats)

		if page.Next == "" {
			return ""
		}
		cursor = page.Next
	}
	return cursor
}

// storePage upserts one page of posts in a single short transaction.
func (s *IngestService) storePage(ctx context.Context, posts []domain.Post, stats *domain.RunStats) {
	if len(posts) == 0 {
		return
	}

	inserted := make([]bool, len(posts))

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i := range posts {
			isNew, err := s.posts.Upsert(txCtx, &posts[i])
			if err != nil {
				return fmt.Errorf("upsert post %s: %w", posts[i].ID, err)
			}
			inserted[i] = isNew
		}
		return nil
	})
	if err != nil {
		stats.StorageFaults++
		s.logger.Error("failed to store page", "posts", len(posts), "error", err)
		return
	}

	if s.publisher == nil {
		return
	}
	for i := range posts {
		if err := s.publisher.Publish(ctx, &posts[i], inserted[i]); err != nil {
			s.logger.Warn("failed to publish post event", "post_id", posts[i].ID, "error", err)
			continue
		}
		stats.Published++
	}
}
