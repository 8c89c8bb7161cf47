package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"docqa/internal/adapter/embedding"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// SemanticRetriever answers similarity searches by embedding the query
// and searching the vector index. When the indexed path errors it
// degrades to a linear cosine scan over a bounded sample of raw chunk
// records; a record with a missing or wrong-dimension embedding scores
// zero rather than aborting the scan.
type SemanticRetriever struct {
	embedder   port.Embedder
	index      port.VectorIndex
	store      port.ChunkStore
	queryCache *embedding.Cache
	scanLimit  int
	log        *zap.Logger
}

// NewSemanticRetriever creates a semantic retriever. queryCache may be
// nil to disable query embedding caching. scanLimit bounds the
// degraded-mode linear scan; values <= 0 default to 100.
func NewSemanticRetriever(
	embedder port.Embedder,
	index port.VectorIndex,
	store port.ChunkStore,
	queryCache *embedding.Cache,
	scanLimit int,
	log *zap.Logger,
) *SemanticRetriever {
	if scanLimit <= 0 {
		scanLimit = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SemanticRetriever{
		embedder:   embedder,
		index:      index,
		store:      store,
		queryCache: queryCache,
		scanLimit:  scanLimit,
		log:        log,
	}
}

// SimilaritySearch returns up to n chunks with SemanticScore populated,
// descending. Best-effort: fewer than n results is not an error.
func (r *SemanticRetriever) SimilaritySearch(ctx context.Context, query string, n int) ([]domain.ScoredCandidate, error) {
	if n <= 0 {
		return nil, nil
	}

	queryVec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.index.Search(queryVec, n)
	if err != nil {
		r.log.Warn("indexed similarity search failed, falling back to linear scan",
			zap.Error(err),
			zap.Int("scan_limit", r.scanLimit))
		return r.fallbackScan(queryVec, n)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		chunk, err := r.store.GetChunk(hit.ChunkID)
		if err != nil {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{
			Chunk:         chunk,
			SemanticScore: hit.Score,
		})
	}

	return candidates, nil
}

func (r *SemanticRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if r.queryCache != nil {
		if vec, ok := r.queryCache.Get(query); ok {
			return vec, nil
		}
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}

	if r.queryCache != nil {
		r.queryCache.Put(query, vectors[0])
	}
	return vectors[0], nil
}

// fallbackScan is the degraded path: read a bounded sample of raw
// records and score them by cosine similarity. Explicitly non-scalable;
// acceptable only because it runs when the indexed path is broken.
func (r *SemanticRetriever) fallbackScan(queryVec []float32, n int) ([]domain.ScoredCandidate, error) {
	chunks, err := r.store.ScanChunks(r.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("fallback scan failed: %w", err)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, domain.ScoredCandidate{
			Chunk:         chunk,
			SemanticScore: CosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SemanticScore > candidates[j].SemanticScore
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths and zero vectors score 0, keeping malformed
// records harmless during the fallback scan.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
