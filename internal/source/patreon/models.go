package patreon

// apiResponse is one page of the remote feed in its JSON:API envelope.
type apiResponse struct {
	Data  []apiPost `json:"data"`
	Links apiLinks  `json:"links"`
}

type apiPost struct {
	ID         string        `json:"id"`
	Attributes apiAttributes `json:"attributes"`
}

type apiAttributes struct {
	Title        string `json:"title"`
	PublishedAt  string `json:"publishedAt"`
	CommentCount int    `json:"commentCount"`
	LikeCount    int    `json:"likeCount"`
	TeaserText   string `json:"teaserText"`
	URL          string `json:"url"`
}

type apiLinks struct {
	Next string `json:"next"`
}
