package patreon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// Config holds feed client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// Client fetches pages of the remote post feed. It follows the feed's
// own "next" links verbatim and never retries: a failed fetch is the
// caller's signal to stop sweeping for this run.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *slog.Logger
}

// New creates a feed client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		logger:      logger.With("component", "feed"),
	}
}

// FetchPage fetches one page of the feed. An empty cursor means the
// feed's default most-recent-first first page; otherwise cursor is the
// opaque "next" URL from a previous page and is requested as-is.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*domain.FeedPage, error) {
	url := c.baseURL
	if cursor != "" {
		url = cursor
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PatreonPostTracker/1.0")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("fetched feed page",
		"posts", len(apiResp.Data),
		"has_next", apiResp.Links.Next != "",
	)

	return c.transform(&apiResp)
}

func (c *Client) transform(resp *apiResponse) (*domain.FeedPage, error) {
	page := &domain.FeedPage{
		Posts: make([]domain.Post, 0, len(resp.Data)),
		Next:  resp.Links.Next,
	}

	for _, p := range resp.Data {
		publishedAt, err := time.Parse(time.RFC3339, p.Attributes.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse publishedAt for post %s: %w", p.ID, err)
		}

		page.Posts = append(page.Posts, domain.Post{
			ID:           p.ID,
			Title:        p.Attributes.Title,
			PublishedAt:  publishedAt,
			CommentCount: p.Attributes.CommentCount,
			LikeCount:    p.Attributes.LikeCount,
			TeaserText:   p.Attributes.TeaserText,
			URL:          p.Attributes.URL,
		})
	}

	return page, nil
}
