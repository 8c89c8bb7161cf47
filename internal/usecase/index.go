package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/fs"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// IndexUseCase ingests document files: walk, hash, chunk, embed, store.
type IndexUseCase struct {
	store    port.ChunkStore
	walker   *fs.Walker
	chunker  *chunker.TextChunker
	embedder port.Embedder
	log      *zap.Logger
}

func NewIndexUseCase(
	store port.ChunkStore,
	walker *fs.Walker,
	chunker *chunker.TextChunker,
	embedder port.Embedder,
	log *zap.Logger,
) *IndexUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndexUseCase{
		store:    store,
		walker:   walker,
		chunker:  chunker,
		embedder: embedder,
		log:      log,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed  int
	FilesSkipped  int
	ChunksCreated int
	Errors        []string
}

// ProgressFunc reports ingestion progress: files processed so far,
// total files, and a short status message.
type ProgressFunc func(processed, total int, message string)

// Index ingests every matching file under root. Files whose content
// hash is already stored are skipped unless force is set; force clears
// the store first.
func (u *IndexUseCase) Index(ctx context.Context, root string, force bool, progress ProgressFunc) (*IndexResult, error) {
	result := &IndexResult{}

	if force {
		if err := u.store.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear store: %w", err)
		}
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	total := len(files)
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		hash, err := fs.FileHash(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to hash %s: %v", file.Path, err))
			continue
		}

		exists, err := u.store.HasFile(hash)
		if err != nil {
			return result, err
		}
		if exists {
			result.FilesSkipped++
			if progress != nil {
				progress(i+1, total, fmt.Sprintf("Skipping %s (already indexed)", file.Name))
			}
			continue
		}

		if progress != nil {
			progress(i+1, total, fmt.Sprintf("Processing %s...", file.Name))
		}

		created, err := u.indexFile(ctx, file, hash)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to index %s: %v", file.Path, err))
			continue
		}
		if created == 0 {
			u.log.Warn("no text extracted, skipping file", zap.String("file", file.Name))
			continue
		}

		result.FilesIndexed++
		result.ChunksCreated += created
	}

	return result, nil
}

func (u *IndexUseCase) indexFile(ctx context.Context, file fs.FileInfo, hash string) (int, error) {
	content, err := fs.ReadFile(file.Path)
	if err != nil {
		return 0, err
	}

	pieces := u.chunker.Chunk(content)

	texts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		texts = append(texts, p)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:      chunker.ChunkID(hash, i),
			Content: text,
			Metadata: domain.ChunkMetadata{
				FileName:   file.Name,
				ChunkIndex: i,
				FileHash:   hash,
			},
			Embedding: vectors[i],
		}
	}

	if err := u.store.AddChunks(chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	u.log.Info("indexed file",
		zap.String("file", file.Name),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}
