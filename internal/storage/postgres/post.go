package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// ErrCountNotNumeric is returned when the posts count aggregate cannot
// be read back as a number.
var ErrCountNotNumeric = errors.New("post count aggregate is not numeric")

var sortColumns = map[string]string{
	domain.SortByComments:  "comment_count",
	domain.SortByLikes:     "like_count",
	domain.SortByPublished: "published_at",
}

var sortDirections = map[string]string{
	domain.SortAsc:  "ASC",
	domain.SortDesc: "DESC",
}

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// Upsert inserts the post or, when the id already exists, overwrites
// every mutable column with the fetched values. Returns true when the
// row was freshly inserted. xmax is zero only on rows the inserting
// transaction created.
func (s *PostStore) Upsert(ctx context.Context, post *domain.Post) (bool, error) {
	query := `
		INSERT INTO posts (
			id, title, published_at, comment_count, like_count, teaser_text, url, last_seen_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			comment_count = EXCLUDED.comment_count,
			like_count = EXCLUDED.like_count,
			teaser_text = EXCLUDED.teaser_text,
			url = EXCLUDED.url,
			last_seen_at = NOW()
		RETURNING (xmax = 0)`

	var inserted bool
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		post.ID,
		post.Title,
		post.PublishedAt,
		post.CommentCount,
		post.LikeCount,
		post.TeaserText,
		post.URL,
	).Scan(&inserted)
	if err != nil {
		return false, err
	}

	return inserted, nil
}

// Count returns the number of distinct post ids stored.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	row := s.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM posts`)

	var count sql.NullInt64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	if !count.Valid {
		return 0, ErrCountNotNumeric
	}

	return int(count.Int64), nil
}

// Select returns one page of post summaries. Sort tokens are resolved
// through a whitelist so only known column names ever reach the ORDER BY;
// the query service screens caller input before requests get here. The
// secondary sort by id keeps pagination stable when sort keys collide.
func (s *PostStore) Select(ctx context.Context, req domain.PageRequest) ([]domain.PostSummary, error) {
	column, ok := sortColumns[req.SortColumn]
	if !ok {
		return nil, fmt.Errorf("unknown sort column %q", req.SortColumn)
	}
	direction, ok := sortDirections[req.SortDirection]
	if !ok {
		return nil, fmt.Errorf("unknown sort direction %q", req.SortDirection)
	}
	if req.Page < 1 {
		return nil, fmt.Errorf("page must be 1-indexed, got %d", req.Page)
	}
	if req.PageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", req.PageSize)
	}

	query := fmt.Sprintf(`
		SELECT title, published_at, comment_count, like_count, url
		FROM posts
		WHERE title ILIKE '%%' || $1 || '%%'
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, column, direction)

	offset := (req.Page - 1) * req.PageSize

	summaries := []domain.PostSummary{}
	err := s.db.SelectContext(ctx, &summaries, query, req.SearchText, req.PageSize, offset)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}
