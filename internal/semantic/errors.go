package semantic

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when Search is called with empty or
	// whitespace-only query text. Embedders are not required to accept
	// empty input, so this is rejected before any embedding call.
	ErrEmptyQuery = errors.New("semantic: empty query")

	// ErrPositionOutOfRange is returned when MostSimilar is called with a
	// position outside the current corpus.
	ErrPositionOutOfRange = errors.New("semantic: position out of range")

	// ErrDimensionMismatch is returned when the embedder produces vectors
	// of inconsistent dimensionality. This is a fatal configuration error;
	// mismatched vectors are never scored.
	ErrDimensionMismatch = errors.New("semantic: embedding dimension mismatch")
)

// EmbeddingError wraps a failure from the Embedder. For a batch Index call the
// whole batch is aborted and the prior corpus is kept.
type EmbeddingError struct {
	// Input is the text that failed to embed, empty when unknown.
	Input string
	Err   error
}

func (e *EmbeddingError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("semantic: embed %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("semantic: embed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
