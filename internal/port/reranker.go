package port

import "context"

// Reranker scores query-document pairs jointly for relevance.
//
// Availability is decided once at construction: callers hold either a
// real implementation or NoopReranker, never a nil. A Noop result
// (empty, no error) means "keep the incoming order".
type Reranker interface {
	// Rerank scores each (query, document) pair and returns the
	// results sorted by relevance score, highest first. Index refers
	// to the document's position in the input slice.
	Rerank(ctx context.Context, query string, documents []string) ([]RerankedResult, error)

	// ModelName returns the name of the reranking model.
	ModelName() string
}

// RerankedResult is one scored pair.
type RerankedResult struct {
	Index int     // position in the input documents slice
	Score float64 // relevance score, higher is better
}

// NoopReranker is the null-object used when no cross-encoder is
// available. Rerank returns nothing, which callers treat as "preserve
// the pre-rerank order".
type NoopReranker struct{}

func (NoopReranker) Rerank(context.Context, string, []string) ([]RerankedResult, error) {
	return nil, nil
}

func (NoopReranker) ModelName() string {
	return "none"
}
