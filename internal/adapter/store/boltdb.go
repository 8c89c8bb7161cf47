package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

var (
	bucketChunks = []byte("chunks")
	bucketFiles  = []byte("files")
)

// BoltStore persists chunks with their embeddings in BoltDB and keeps
// an in-memory copy of every embedding for the indexed similarity
// search path. Brute-force cosine search is adequate for corpora of
// document chunks; swap in an ANN index if that stops being true.
type BoltStore struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	vectors map[string][]float32
}

type storedChunk struct {
	Content   string               `json:"content"`
	Metadata  domain.ChunkMetadata `json:"metadata"`
	Embedding []float32            `json:"embedding,omitempty"`
}

type fileRecord struct {
	FileName string   `json:"file_name"`
	ChunkIDs []string `json:"chunk_ids"`
}

// NewBoltStore opens (or creates) the chunk database at path and loads
// stored embeddings into memory.
func NewBoltStore(path string, dimension int) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketFiles} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:        db,
		dimension: dimension,
		vectors:   make(map[string][]float32),
	}

	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

// loadVectors reads every stored embedding into the in-memory index.
// Records whose embedding does not match the configured dimension are
// skipped here; the raw record stays reachable through ScanChunks.
func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var stored storedChunk
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			if len(stored.Embedding) != s.dimension {
				return nil
			}
			s.vectors[string(k)] = stored.Embedding
			return nil
		})
	})
}

// AddChunks stores a batch of chunks and registers them against their
// source file hash.
func (s *BoltStore) AddChunks(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		cb := tx.Bucket(bucketChunks)
		fb := tx.Bucket(bucketFiles)

		byFile := make(map[string]*fileRecord)

		for _, chunk := range chunks {
			if len(chunk.Embedding) > 0 && len(chunk.Embedding) != s.dimension {
				return fmt.Errorf("embedding dimension mismatch for chunk %s: expected %d, got %d",
					chunk.ID, s.dimension, len(chunk.Embedding))
			}

			data, err := json.Marshal(storedChunk{
				Content:   chunk.Content,
				Metadata:  chunk.Metadata,
				Embedding: chunk.Embedding,
			})
			if err != nil {
				return err
			}
			if err := cb.Put([]byte(chunk.ID), data); err != nil {
				return err
			}

			if len(chunk.Embedding) == s.dimension {
				s.vectors[chunk.ID] = chunk.Embedding
			}

			hash := chunk.Metadata.FileHash
			rec, ok := byFile[hash]
			if !ok {
				rec = &fileRecord{FileName: chunk.Metadata.FileName}
				if existing := fb.Get([]byte(hash)); existing != nil {
					json.Unmarshal(existing, rec)
				}
				byFile[hash] = rec
			}
			rec.ChunkIDs = append(rec.ChunkIDs, chunk.ID)
		}

		for hash, rec := range byFile {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := fb.Put([]byte(hash), data); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetChunk returns a chunk by ID.
func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk not found: %s", id)
		}

		var stored storedChunk
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to decode chunk %s: %w", id, err)
		}

		chunk = domain.Chunk{
			ID:        id,
			Content:   stored.Content,
			Metadata:  stored.Metadata,
			Embedding: stored.Embedding,
		}
		return nil
	})

	return chunk, err
}

// ScanChunks reads up to limit raw chunk records in key order,
// embeddings included, regardless of whether they made it into the
// in-memory index. This is the data source for the degraded-mode
// linear similarity scan.
func (s *BoltStore) ScanChunks(limit int) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketChunks).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(chunks) >= limit {
				break
			}

			var stored storedChunk
			if err := json.Unmarshal(v, &stored); err != nil {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				ID:        string(k),
				Content:   stored.Content,
				Metadata:  stored.Metadata,
				Embedding: stored.Embedding,
			})
		}
		return nil
	})

	return chunks, err
}

// Search finds the n nearest stored vectors by cosine similarity.
func (s *BoltStore) Search(query []float32, n int) ([]port.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	if len(s.vectors) == 0 {
		return nil, nil
	}

	hits := make([]port.VectorHit, 0, len(s.vectors))
	for id, vec := range s.vectors {
		hits = append(hits, port.VectorHit{
			ChunkID: id,
			Score:   cosineSimilarity(query, vec),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

// HasFile reports whether chunks for the given file hash exist.
func (s *BoltStore) HasFile(fileHash string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketFiles).Get([]byte(fileHash)) != nil
		return nil
	})
	return exists, err
}

// DeleteFile removes all chunks belonging to the given file hash.
func (s *BoltStore) DeleteFile(fileHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		fb := tx.Bucket(bucketFiles)
		cb := tx.Bucket(bucketChunks)

		data := fb.Get([]byte(fileHash))
		if data == nil {
			return nil
		}

		var rec fileRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode file record %s: %w", fileHash, err)
		}

		for _, id := range rec.ChunkIDs {
			if err := cb.Delete([]byte(id)); err != nil {
				return err
			}
			delete(s.vectors, id)
		}

		return fb.Delete([]byte(fileHash))
	})
}

// Stats returns corpus counts.
func (s *BoltStore) Stats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		stats.TotalChunks = tx.Bucket(bucketChunks).Stats().KeyN
		stats.TotalFiles = tx.Bucket(bucketFiles).Stats().KeyN
		return nil
	})
	return stats, err
}

// Clear removes every stored chunk and file record.
func (s *BoltStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketFiles} {
			if err := tx.DeleteBucket(b); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.vectors = make(map[string][]float32)
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
