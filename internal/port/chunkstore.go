package port

import "docqa/internal/domain"

// ChunkStore persists chunks with their embeddings and tracks which
// source files have been ingested.
type ChunkStore interface {
	// AddChunks stores a batch of chunks.
	AddChunks(chunks []domain.Chunk) error

	// GetChunk returns a chunk by ID.
	GetChunk(id string) (domain.Chunk, error)

	// ScanChunks reads up to limit raw chunk records in storage order.
	// Used only by the degraded-mode linear similarity scan.
	ScanChunks(limit int) ([]domain.Chunk, error)

	// HasFile reports whether chunks for the given file hash exist.
	HasFile(fileHash string) (bool, error)

	// DeleteFile removes all chunks belonging to the given file hash.
	DeleteFile(fileHash string) error

	// Stats returns corpus counts.
	Stats() (domain.Stats, error)

	// Clear removes every stored chunk and file record.
	Clear() error

	Close() error
}
