package models

// SearchResult is a single similarity hit.
type SearchResult struct {
	Document *Document `json:"document"`
	// Score is cosine similarity to the query in [-1, 1]
	// (in practice [0, 1] for sentence embeddings).
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}
