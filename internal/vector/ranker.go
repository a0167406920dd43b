package vector

import "sort"

// Hit is a single ranking hit: the position of a vector in the table and its
// similarity score to the query.
type Hit struct {
	Position int
	Score    float64
}

// Ranker ranks a table of vectors against a query vector and returns the
// top-k hits ordered by descending score, ties broken by ascending position.
// Implementations must not retain or mutate the table. BruteForce is the
// exact baseline; approximate structures can be substituted behind the same
// contract.
type Ranker interface {
	Rank(query []float32, table [][]float32, k int) []Hit
}

// BruteForce is an exact ranker: it scores the query against every vector in
// the table by cosine similarity. O(len(table) * dims) per call, fine for
// small corpora and the correctness oracle for any approximate replacement.
type BruteForce struct{}

// Rank scores every table vector and returns the top min(k, len(table)) hits.
// The sort is stable over ascending positions, so equal scores keep corpus order.
func (BruteForce) Rank(query []float32, table [][]float32, k int) []Hit {
	if k <= 0 || len(table) == 0 {
		return nil
	}
	hits := make([]Hit, len(table))
	for i, vec := range table {
		hits[i] = Hit{Position: i, Score: Cosine(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}
