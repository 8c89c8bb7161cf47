package usecase

import (
	"context"
	"strings"
	"testing"

	"docqa/internal/port"
)

type fakeLLM struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) GenerateWithSystem(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string { return "fake-chat" }

func TestAnswerBuildsNumberedContext(t *testing.T) {
	searcher := &fakeSearcher{candidates: pool("a", "b")}
	chat := &fakeLLM{answer: "the answer"}
	u := NewAnswerUseCase(newPipeline(searcher, port.NoopReranker{}), chat, 5, nil)

	answer, err := u.Answer(context.Background(), "what is in the report?")
	if err != nil {
		t.Fatal(err)
	}

	if answer.Text != "the answer" {
		t.Errorf("answer = %q", answer.Text)
	}
	if !strings.Contains(chat.lastUser, "Document 1:\ncontent of a") {
		t.Errorf("prompt missing first context block:\n%s", chat.lastUser)
	}
	if !strings.Contains(chat.lastUser, "Document 2:\ncontent of b") {
		t.Errorf("prompt missing second context block:\n%s", chat.lastUser)
	}
	if !strings.Contains(chat.lastUser, "what is in the report?") {
		t.Error("prompt missing the question")
	}
}

func TestAnswerSources(t *testing.T) {
	searcher := &fakeSearcher{candidates: pool("a", "b")}
	chat := &fakeLLM{answer: "ok"}
	u := NewAnswerUseCase(newPipeline(searcher, port.NoopReranker{}), chat, 5, nil)

	answer, err := u.Answer(context.Background(), "question")
	if err != nil {
		t.Fatal(err)
	}

	if len(answer.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(answer.Sources))
	}
	if answer.Sources[0].FileName != "a.txt" || answer.Sources[0].ChunkIndex != 0 {
		t.Errorf("first source = %+v", answer.Sources[0])
	}
}

func TestAnswerNoDocuments(t *testing.T) {
	chat := &fakeLLM{answer: "should not be called"}
	u := NewAnswerUseCase(newPipeline(&fakeSearcher{}, port.NoopReranker{}), chat, 5, nil)

	answer, err := u.Answer(context.Background(), "question")
	if err != nil {
		t.Fatalf("empty ranking must not error: %v", err)
	}
	if answer.Text != noDocumentsAnswer {
		t.Errorf("answer = %q, want the no-documents answer", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("got %d sources, want none", len(answer.Sources))
	}
	if chat.calls != 0 {
		t.Error("LLM called despite empty ranking")
	}
}

func TestAnswerSourcePreviewTruncated(t *testing.T) {
	candidates := pool("a")
	candidates[0].Chunk.Content = strings.Repeat("x", 500)
	searcher := &fakeSearcher{candidates: candidates}
	u := NewAnswerUseCase(newPipeline(searcher, port.NoopReranker{}), &fakeLLM{answer: "ok"}, 5, nil)

	answer, err := u.Answer(context.Background(), "question")
	if err != nil {
		t.Fatal(err)
	}
	if got := answer.Sources[0].Content; len(got) != sourcePreviewChars+3 {
		t.Errorf("preview length = %d, want %d plus ellipsis", len(got), sourcePreviewChars)
	}
}
