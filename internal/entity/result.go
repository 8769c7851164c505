package entity

// SearchResult is one web-search hit after normalization.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Company string `json:"company"`
}
