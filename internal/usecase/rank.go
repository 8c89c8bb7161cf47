package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"docqa/internal/adapter/retriever"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// RankUseCase is the retrieval ranking pipeline: semantic retrieval
// with lexical re-weighting and optional cross-encoder reranking.
//
// Every stage works on candidate values local to one Rank call; the
// only shared state is the injected collaborators, which are read-only
// after construction.
type RankUseCase struct {
	searcher        port.SimilaritySearcher
	hybrid          *retriever.HybridScorer
	reranker        port.Reranker
	retrieveTimeout time.Duration
	rerankTimeout   time.Duration
	log             *zap.Logger
}

// NewRankUseCase creates the pipeline. reranker must not be nil; pass
// port.NoopReranker when no cross-encoder is available.
func NewRankUseCase(
	searcher port.SimilaritySearcher,
	hybrid *retriever.HybridScorer,
	reranker port.Reranker,
	retrieveTimeout, rerankTimeout time.Duration,
	log *zap.Logger,
) *RankUseCase {
	if retrieveTimeout <= 0 {
		retrieveTimeout = 30 * time.Second
	}
	if rerankTimeout <= 0 {
		rerankTimeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RankUseCase{
		searcher:        searcher,
		hybrid:          hybrid,
		reranker:        reranker,
		retrieveTimeout: retrieveTimeout,
		rerankTimeout:   rerankTimeout,
		log:             log,
	}
}

// Rank retrieves, scores, and orders the chunks most relevant to the
// query, returning at most topK candidates.
//
// An empty result is the "no relevant documents" outcome, not a
// failure: retrieval errors degrade to it rather than propagating.
// Only caller cancellation is returned as an error, checked at stage
// boundaries since no stage mutates external state.
func (u *RankUseCase) Rank(ctx context.Context, query string, topK int) (domain.RankedResult, error) {
	result := domain.RankedResult{Query: query}
	if topK <= 0 {
		return result, nil
	}

	log := u.log.With(zap.String("query", preview(query, 80)), zap.Int("top_k", topK))

	// Over-fetch to leave headroom for hybrid re-weighting and
	// reranking to promote candidates from deeper in the pool.
	candidates, err := u.retrieve(ctx, query, 2*topK)
	if err != nil {
		if isCancellation(ctx, err) {
			return result, err
		}
		log.Warn("retrieval failed, returning no documents", zap.Error(err))
		return result, nil
	}

	candidates = dropBlank(candidates)
	if len(candidates) == 0 {
		log.Info("no relevant documents found")
		return result, nil
	}
	log.Debug("retrieved candidates", zap.Int("count", len(candidates)))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	keywords := retriever.ExtractKeywords(query)
	candidates = u.hybrid.Score(candidates, keywords)
	log.Debug("hybrid scoring done",
		zap.Strings("keywords", keywords),
		zap.Float64("top_hybrid_score", candidates[0].HybridScore))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	reranked, ok := u.rerank(ctx, log, query, candidates)
	if ok {
		candidates = reranked
		result.Reranked = true
	}

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	result.Candidates = candidates
	return result, nil
}

func (u *RankUseCase) retrieve(ctx context.Context, query string, n int) ([]domain.ScoredCandidate, error) {
	rctx, cancel := context.WithTimeout(ctx, u.retrieveTimeout)
	defer cancel()
	return u.searcher.SimilaritySearch(rctx, query, n)
}

// rerank re-scores the hybrid-ranked candidates with the cross-encoder.
// Returns ok=false when the step did not run to completion: the noop
// reranker, or any inference failure, leaves the hybrid order intact
// for this query. A failure never produces a partially reordered list.
func (u *RankUseCase) rerank(ctx context.Context, log *zap.Logger, query string, candidates []domain.ScoredCandidate) ([]domain.ScoredCandidate, bool) {
	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Chunk.Content
	}

	rctx, cancel := context.WithTimeout(ctx, u.rerankTimeout)
	defer cancel()

	scored, err := u.reranker.Rerank(rctx, query, documents)
	if err != nil {
		log.Warn("reranking failed, keeping hybrid order", zap.Error(err))
		return nil, false
	}
	if len(scored) == 0 {
		return nil, false
	}

	reranked := make([]domain.ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(candidates) {
			continue
		}
		c := candidates[s.Index]
		c.RerankScore = s.Score
		reranked = append(reranked, c)
	}
	if len(reranked) == 0 {
		return nil, false
	}

	log.Debug("reranking done",
		zap.String("model", u.reranker.ModelName()),
		zap.Float64("top_rerank_score", reranked[0].RerankScore))
	return reranked, true
}

// dropBlank excludes candidates with empty or whitespace-only content
// before any scoring happens.
func dropBlank(candidates []domain.ScoredCandidate) []domain.ScoredCandidate {
	kept := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Chunk.Content) == "" {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
