package domain

import "time"

// Sort tokens accepted by the read path. Anything else is rejected.
const (
	SortByComments  = "commentCount"
	SortByLikes     = "likeCount"
	SortByPublished = "publishedAt"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageRequest describes one page of a sorted, filtered read. Page is
// 1-indexed; SearchText is a substring match against titles, with the
// empty string matching everything.
type PageRequest struct {
	Page          int
	SortColumn    string
	SortDirection string
	SearchText    string
	PageSize      int
}

// PostSummary is the projection exposed by the read path. TeaserText and
// the raw remote id deliberately never leave the store.
type PostSummary struct {
	Title        string    `db:"title" json:"title"`
	PublishedAt  time.Time `db:"published_at" json:"publishedAt"`
	CommentCount int       `db:"comment_count" json:"commentCount"`
	LikeCount    int       `db:"like_count" json:"likeCount"`
	URL          string    `db:"url" json:"url"`
}

// PageData is the composite read handed to a rendering layer in one call.
type PageData struct {
	Items      []PostSummary `json:"items"`
	LastRun    *Run          `json:"lastRun"`
	TotalCount int           `json:"totalCount"`
}
