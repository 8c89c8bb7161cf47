package retriever

import (
	"fmt"
	"math"
	"testing"

	"docqa/internal/domain"
)

func candidate(id, content string, semantic float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Chunk: domain.Chunk{
			ID:      id,
			Content: content,
		},
		SemanticScore: semantic,
	}
}

func order(candidates []domain.ScoredCandidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Chunk.ID
	}
	return ids
}

func TestHybridScoreFormula(t *testing.T) {
	scorer := NewHybridScorer(0.6)
	keywords := []string{"budget"}

	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("a", "budget", 0.5),
	}, keywords)

	want := 0.4*0.5 + 0.6*1.0
	if got := scored[0].HybridScore; math.Abs(got-want) > 1e-9 {
		t.Errorf("HybridScore = %v, want %v", got, want)
	}
	if got := scored[0].KeywordScore; got != 1.0 {
		t.Errorf("KeywordScore = %v, want 1.0", got)
	}
}

func TestHybridScoreMonotonic(t *testing.T) {
	scorer := NewHybridScorer(0.6)
	keywords := []string{"budget"}

	// Higher semantic score with identical lexical signal must not
	// score lower.
	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("low", "budget text", 0.2),
		candidate("high", "budget text", 0.9),
	}, keywords)

	if scored[0].Chunk.ID != "high" {
		t.Errorf("expected higher semantic score to win, got order %v", order(scored))
	}

	// Higher keyword score with identical semantic signal must not
	// score lower.
	scored = scorer.Score([]domain.ScoredCandidate{
		candidate("none", "no overlap here", 0.5),
		candidate("hit", "budget mentioned", 0.5),
	}, keywords)

	if scored[0].Chunk.ID != "hit" {
		t.Errorf("expected higher keyword score to win, got order %v", order(scored))
	}
}

func TestHybridBoostZeroIsSemanticOrder(t *testing.T) {
	scorer := NewHybridScorer(0)
	keywords := []string{"budget"}

	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("a", "budget budget budget", 0.3),
		candidate("b", "nothing relevant", 0.8),
		candidate("c", "budget", 0.5),
	}, keywords)

	want := []string{"b", "c", "a"}
	if got := order(scored); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("boost=0 order = %v, want semantic order %v", got, want)
	}
}

func TestHybridBoostOneIsLexicalOrder(t *testing.T) {
	scorer := NewHybridScorer(1)
	keywords := []string{"budget", "report"}

	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("a", "no match", 0.9),
		candidate("b", "budget report", 0.1),
		candidate("c", "budget only", 0.5),
	}, keywords)

	want := []string{"b", "c", "a"}
	if got := order(scored); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("boost=1 order = %v, want lexical order %v", got, want)
	}
}

func TestHybridStableTieBreak(t *testing.T) {
	scorer := NewHybridScorer(0.5)

	// No keywords: every keyword score is 0, so equal semantic scores
	// tie and must keep retrieval order.
	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("first", "text one", 0.5),
		candidate("second", "text two", 0.5),
		candidate("third", "text three", 0.5),
	}, nil)

	want := []string{"first", "second", "third"}
	if got := order(scored); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("tie order = %v, want retrieval order %v", got, want)
	}
}

func TestHybridLexicalMatchBeatsParaphrase(t *testing.T) {
	// Chunk A: exact phrase match, weak semantic score. Chunk B:
	// semantically related paraphrase, no keyword overlap. With a
	// lexical-heavy boost, A must outrank B.
	scorer := NewHybridScorer(0.6)
	keywords := ExtractKeywords("budget report 2023")

	scored := scorer.Score([]domain.ScoredCandidate{
		candidate("b", "the annual financial summary for last year", 0.7),
		candidate("a", "budget report 2023 attached below", 0.3),
	}, keywords)

	if scored[0].Chunk.ID != "a" {
		t.Errorf("exact keyword match should outrank paraphrase, got order %v", order(scored))
	}
}

func TestHybridInvalidBoostFallsBack(t *testing.T) {
	scorer := NewHybridScorer(1.5)
	if scorer.keywordBoost != 0.5 {
		t.Errorf("keywordBoost = %v, want 0.5 fallback", scorer.keywordBoost)
	}
}

func TestHybridDoesNotMutateInput(t *testing.T) {
	scorer := NewHybridScorer(0.6)
	input := []domain.ScoredCandidate{
		candidate("a", "budget", 0.2),
		candidate("b", "budget budget", 0.9),
	}

	scorer.Score(input, []string{"budget"})

	if input[0].Chunk.ID != "a" || input[0].HybridScore != 0 {
		t.Error("Score mutated its input slice")
	}
}
