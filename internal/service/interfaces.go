package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

type PostStore interface {
	Upsert(ctx context.Context, post *domain.Post) (bool, error)
	Count(ctx context.Context) (int, error)
	Select(ctx context.Context, req domain.PageRequest) ([]domain.PostSummary, error)
}

type RunStore interface {
	Begin(ctx context.Context, startedAt time.Time) error
	Latest(ctx context.Context) (*domain.Run, error)
	Complete(ctx context.Context, startedAt time.Time, durationSeconds float64, itemsRetrieved int, resumeCursor *string) error
}

type FeedClient interface {
	FetchPage(ctx context.Context, cursor string) (*domain.FeedPage, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, post *domain.Post, isNew bool) error
	Close() error
}
