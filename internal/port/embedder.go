package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex is the indexed similarity search path over stored
// embeddings.
type VectorIndex interface {
	// Search finds the n nearest stored vectors to the query vector.
	Search(query []float32, n int) ([]VectorHit, error)
}

// VectorHit is one indexed search result.
type VectorHit struct {
	ChunkID string
	Score   float64
}
