package models

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of results returned when a query does not set TopK.
const DefaultTopK = 3

// SearchQuery represents a similarity search request.
type SearchQuery struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
	// MinScore filters out results below this cosine similarity. Zero means no filter.
	MinScore float64 `json:"min_score,omitempty"`
}

// Validate ensures the query has valid fields and fills unset ones from the
// configured defaults. Returns an error if the query text is empty or
// whitespace; normalizes TopK and MinScore.
func (q *SearchQuery) Validate(defaultTopK, maxTopK int, minScore float64) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK <= 0 {
		if defaultTopK > 0 {
			q.TopK = defaultTopK
		} else {
			q.TopK = DefaultTopK
		}
	}
	if maxTopK > 0 && q.TopK > maxTopK {
		q.TopK = maxTopK
	}
	if q.MinScore <= 0 {
		q.MinScore = minScore
	}
	return nil
}
