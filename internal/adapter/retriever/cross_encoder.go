package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"docqa/internal/port"
)

// maxPairChars bounds the document text sent to the cross-encoder per
// pair. A latency/quality trade-off, not a correctness requirement.
const maxPairChars = 512

// CohereReranker implements cross-encoder reranking using Cohere's
// rerank API. The model attends to query and document jointly, which
// captures interaction terms that independent embed-then-cosine
// similarity cannot.
type CohereReranker struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type cohereRerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n,omitempty"`
}

type cohereRerankResponse struct {
	Results []cohereRerankResult `json:"results"`
}

type cohereRerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewCohereReranker creates a Cohere reranker. Construction fails when
// the API key is missing; callers then fall back to port.NoopReranker,
// fixing the Unavailable state for the life of the process.
func NewCohereReranker(apiKeyEnv, model string) (*CohereReranker, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if model == "" {
		model = "rerank-english-v3.0"
	}

	return &CohereReranker{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.cohere.ai/v1",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewCohereRerankerWithBaseURL is like NewCohereReranker with an
// explicit endpoint, for Cohere-compatible services and tests.
func NewCohereRerankerWithBaseURL(apiKeyEnv, model, baseURL string) (*CohereReranker, error) {
	r, err := NewCohereReranker(apiKeyEnv, model)
	if err != nil {
		return nil, err
	}
	r.baseURL = baseURL
	return r, nil
}

// Rerank jointly scores each (query, document) pair and returns the
// results sorted by relevance, highest first. Documents are truncated
// to maxPairChars before encoding.
func (r *CohereReranker) Rerank(ctx context.Context, query string, documents []string) ([]port.RerankedResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	// Cohere has a limit of 1000 documents per request
	const maxDocs = 1000
	if len(documents) > maxDocs {
		documents = documents[:maxDocs]
	}

	truncated := make([]string, len(documents))
	for i, doc := range documents {
		truncated[i] = truncatePair(doc)
	}

	reqBody := cohereRerankRequest{
		Query:     query,
		Documents: truncated,
		Model:     r.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var rerankResp cohereRerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]port.RerankedResult, len(rerankResp.Results))
	for i, res := range rerankResp.Results {
		results[i] = port.RerankedResult{
			Index: res.Index,
			Score: res.RelevanceScore,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// ModelName returns the model name.
func (r *CohereReranker) ModelName() string {
	return r.model
}

// truncatePair caps text at maxPairChars characters without splitting
// a UTF-8 sequence.
func truncatePair(text string) string {
	if len(text) <= maxPairChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxPairChars {
		return text
	}
	return string(runes[:maxPairChars])
}
