package domain

// ChunkMetadata carries attribution for a chunk back to its source
// document. FileHash is a stable content hash of the whole source file,
// used by ingestion for change detection and by consumers for citation.
type ChunkMetadata struct {
	FileName   string `json:"file_name"`
	ChunkIndex int    `json:"chunk_index"`
	FileHash   string `json:"file_hash"`
}

// Chunk is the atomic retrievable unit of text. Chunks are created once
// at ingestion time and are read-only afterwards.
type Chunk struct {
	ID        string
	Content   string
	Metadata  ChunkMetadata
	Embedding []float32
}

// ScoredCandidate is a chunk annotated with the scores accumulated
// through the ranking stages. Candidates are plain values: each stage
// returns a new slice of annotated copies rather than mutating shared
// state.
type ScoredCandidate struct {
	Chunk Chunk

	// SemanticScore is the retriever's similarity in [0,1].
	SemanticScore float64
	// KeywordScore is the normalized lexical overlap in [0,1].
	KeywordScore float64
	// HybridScore is the weighted combination of the two.
	HybridScore float64
	// RerankScore is the cross-encoder relevance score. Unbounded;
	// only meaningful when the rerank stage ran.
	RerankScore float64
}

// RankedResult is the pipeline output: candidates in final order,
// truncated to the requested size. Ordering is non-increasing by
// RerankScore when Reranked is true, by HybridScore otherwise.
type RankedResult struct {
	Query      string
	Candidates []ScoredCandidate
	Reranked   bool
}

// Empty reports whether the result carries no candidates. An empty
// result means "no relevant documents", which is a valid outcome, not
// a failure.
func (r RankedResult) Empty() bool {
	return len(r.Candidates) == 0
}

// Source identifies one retrieved chunk in an answer, with a short
// content preview for display.
type Source struct {
	FileName   string `json:"file_name"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

// Answer is the generated response plus the sources it was grounded on.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Stats describes the indexed corpus.
type Stats struct {
	TotalFiles  int
	TotalChunks int
}
