package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/port"
)

const answerSystemPrompt = `You are an assistant that answers questions based ONLY on the provided context.
Important rules:
- Use ONLY information from the provided context
- Be precise and structured in your answers
- If the information is not in the context, say so clearly
- Synthesize information from multiple passages when needed`

const noDocumentsAnswer = "I couldn't find any relevant information in the documents to answer your question."

// sourcePreviewChars bounds the content preview attached to each source.
const sourcePreviewChars = 200

// AnswerUseCase turns a question into a grounded answer: rank the
// corpus, concatenate the winning chunks as numbered context blocks,
// and ask the language model.
type AnswerUseCase struct {
	ranker *RankUseCase
	llm    port.LLM
	topK   int
	log    *zap.Logger
}

func NewAnswerUseCase(ranker *RankUseCase, llm port.LLM, topK int, log *zap.Logger) *AnswerUseCase {
	if topK <= 0 {
		topK = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AnswerUseCase{
		ranker: ranker,
		llm:    llm,
		topK:   topK,
		log:    log,
	}
}

// Answer answers a question against the indexed corpus. An empty
// ranking produces the canned "no relevant information" answer with no
// sources, not an error.
func (u *AnswerUseCase) Answer(ctx context.Context, question string) (domain.Answer, error) {
	ranked, err := u.ranker.Rank(ctx, question, u.topK)
	if err != nil {
		return domain.Answer{}, err
	}

	if ranked.Empty() {
		return domain.Answer{Text: noDocumentsAnswer, Sources: []domain.Source{}}, nil
	}

	userPrompt := fmt.Sprintf(`Context (extracted from the documents):
%s

Question: %s

Answer the question based ONLY on the context above. If the context does not contain enough information, say so.`,
		BuildContext(ranked), question)

	u.log.Debug("generating answer",
		zap.String("model", u.llm.ModelName()),
		zap.Int("context_chunks", len(ranked.Candidates)))

	text, err := u.llm.GenerateWithSystem(ctx, answerSystemPrompt, userPrompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	return domain.Answer{
		Text:    text,
		Sources: buildSources(ranked),
	}, nil
}

// BuildContext concatenates the ranked chunk contents as numbered
// context blocks, in final rank order.
func BuildContext(ranked domain.RankedResult) string {
	blocks := make([]string, len(ranked.Candidates))
	for i, c := range ranked.Candidates {
		blocks[i] = fmt.Sprintf("Document %d:\n%s", i+1, c.Chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}

func buildSources(ranked domain.RankedResult) []domain.Source {
	sources := make([]domain.Source, len(ranked.Candidates))
	for i, c := range ranked.Candidates {
		content := c.Chunk.Content
		if runes := []rune(content); len(runes) > sourcePreviewChars {
			content = string(runes[:sourcePreviewChars]) + "..."
		}
		sources[i] = domain.Source{
			FileName:   c.Chunk.Metadata.FileName,
			ChunkIndex: c.Chunk.Metadata.ChunkIndex,
			Content:    content,
		}
	}
	return sources
}
