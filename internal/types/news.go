package types

// NewsArticle is one scraped headline used for sentiment scoring.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
}
