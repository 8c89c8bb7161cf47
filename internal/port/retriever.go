package port

import (
	"context"

	"docqa/internal/domain"
)

// SimilaritySearcher is the vector retrieval contract the ranking
// pipeline consumes. Implementations populate SemanticScore and return
// candidates in descending similarity order, best-effort: fewer than n
// results, or an error with an empty slice, are both acceptable.
type SimilaritySearcher interface {
	SimilaritySearch(ctx context.Context, query string, n int) ([]domain.ScoredCandidate, error)
}
