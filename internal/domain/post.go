package domain

import "time"

// Post is one mirrored feed item. ID is assigned by the remote feed and
// never changes; commentCount and likeCount are remote counters that move
// over time, so re-ingesting a post refreshes them (last write wins).
type Post struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	PublishedAt  time.Time `db:"published_at" json:"publishedAt"`
	CommentCount int       `db:"comment_count" json:"commentCount"`
	LikeCount    int       `db:"like_count" json:"likeCount"`
	TeaserText   string    `db:"teaser_text" json:"teaserText"`
	URL          string    `db:"url" json:"url"`
}

// FeedPage is one page of the remote feed: the decoded items plus the
// opaque cursor for the page after it. Next is empty when the feed has
// no further pages.
type FeedPage struct {
	Posts []Post
	Next  string
}
