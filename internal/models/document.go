// Package models defines core data structures for documents, queries, and search results.
package models

import "time"

// Document is a corpus entry. Position is the document's index in corpus
// insertion order and identifies it for similarity lookups. Documents are
// immutable once indexed; re-indexing builds a fresh corpus.
type Document struct {
	ID        string    `json:"id"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}

// DocumentInput is the input for indexing a single document.
type DocumentInput struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}
