package retriever

import (
	"sort"

	"docqa/internal/domain"
)

// HybridScorer merges semantic similarity with lexical keyword overlap
// into a single ranking signal.
type HybridScorer struct {
	keywordBoost float64 // weight of the lexical signal (0-1)
}

// NewHybridScorer creates a hybrid scorer. keywordBoost outside [0,1]
// falls back to equal weighting.
func NewHybridScorer(keywordBoost float64) *HybridScorer {
	if keywordBoost < 0 || keywordBoost > 1 {
		keywordBoost = 0.5
	}
	return &HybridScorer{keywordBoost: keywordBoost}
}

// Score annotates every candidate with its keyword and hybrid scores
// and returns a new slice sorted descending by hybrid score:
//
//	hybrid = (1-boost)*semantic + boost*keyword
//
// The sort is stable, so candidates with equal hybrid scores keep
// their retrieval order. The full candidate pool is scored before any
// truncation happens downstream, so a lexically strong but
// semantically mediocre chunk can still surface.
func (s *HybridScorer) Score(candidates []domain.ScoredCandidate, keywords []string) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		c.KeywordScore = KeywordScore(c.Chunk.Content, keywords)
		c.HybridScore = (1-s.keywordBoost)*c.SemanticScore + s.keywordBoost*c.KeywordScore
		scored[i] = c
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].HybridScore > scored[j].HybridScore
	})

	return scored
}
