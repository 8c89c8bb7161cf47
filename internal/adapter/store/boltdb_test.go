package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
)

func testStore(t *testing.T, dimension int) *BoltStore {
	t.Helper()

	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"), dimension)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testChunk(id, fileHash string, index int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:      id,
		Content: "content of " + id,
		Metadata: domain.ChunkMetadata{
			FileName:   fileHash + ".txt",
			ChunkIndex: index,
			FileHash:   fileHash,
		},
		Embedding: embedding,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st := testStore(t, 2)

	want := testChunk("c1", "f1", 0, []float32{1, 0})
	if err := st.AddChunks([]domain.Chunk{want}); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetChunk("c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != want.Content || got.Metadata != want.Metadata {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Embedding) != 2 {
		t.Errorf("embedding not persisted: %v", got.Embedding)
	}
}

func TestStoreSearch(t *testing.T) {
	st := testStore(t, 2)

	err := st.AddChunks([]domain.Chunk{
		testChunk("near", "f1", 0, []float32{1, 0}),
		testChunk("far", "f1", 1, []float32{0, 1}),
		testChunk("mid", "f1", 2, []float32{1, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := st.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ChunkID != "near" {
		t.Errorf("first hit = %s, want near", hits[0].ChunkID)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not in descending score order")
	}
}

func TestStoreSearchDimensionMismatch(t *testing.T) {
	st := testStore(t, 2)
	if _, err := st.Search([]float32{1, 0, 0}, 5); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestStoreSearchSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := NewBoltStore(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AddChunks([]domain.Chunk{testChunk("c1", "f1", 0, []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = NewBoltStore(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	hits, err := st.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "c1" {
		t.Errorf("embeddings not reloaded after reopen: %v", hits)
	}
}

func TestStoreAddChunksRejectsWrongDimension(t *testing.T) {
	st := testStore(t, 2)
	err := st.AddChunks([]domain.Chunk{testChunk("c1", "f1", 0, []float32{1, 0, 0})})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestStoreHasFileAndDelete(t *testing.T) {
	st := testStore(t, 2)

	err := st.AddChunks([]domain.Chunk{
		testChunk("c1", "f1", 0, []float32{1, 0}),
		testChunk("c2", "f1", 1, []float32{0, 1}),
		testChunk("c3", "f2", 0, []float32{1, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	exists, err := st.HasFile("f1")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("HasFile(f1) = false after AddChunks")
	}

	if err := st.DeleteFile("f1"); err != nil {
		t.Fatal(err)
	}

	exists, _ = st.HasFile("f1")
	if exists {
		t.Error("HasFile(f1) = true after DeleteFile")
	}
	if _, err := st.GetChunk("c1"); err == nil {
		t.Error("chunk c1 still present after DeleteFile")
	}
	if _, err := st.GetChunk("c3"); err != nil {
		t.Error("chunk of another file removed by DeleteFile")
	}

	hits, err := st.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.ChunkID == "c1" || h.ChunkID == "c2" {
			t.Errorf("deleted chunk %s still in vector index", h.ChunkID)
		}
	}
}

func TestStoreScanChunksBounded(t *testing.T) {
	st := testStore(t, 2)

	var chunks []domain.Chunk
	for i := 0; i < 20; i++ {
		chunks = append(chunks, testChunk(fmt.Sprintf("c%02d", i), "f1", i, []float32{1, 0}))
	}
	if err := st.AddChunks(chunks); err != nil {
		t.Fatal(err)
	}

	got, err := st.ScanChunks(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("got %d chunks, want 5", len(got))
	}
}

func TestStoreStatsAndClear(t *testing.T) {
	st := testStore(t, 2)

	err := st.AddChunks([]domain.Chunk{
		testChunk("c1", "f1", 0, []float32{1, 0}),
		testChunk("c2", "f2", 0, []float32{0, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 2 || stats.TotalFiles != 2 {
		t.Errorf("stats = %+v, want 2 chunks, 2 files", stats)
	}

	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}

	stats, _ = st.Stats()
	if stats.TotalChunks != 0 || stats.TotalFiles != 0 {
		t.Errorf("stats after Clear = %+v, want zeros", stats)
	}
	if hits, _ := st.Search([]float32{1, 0}, 5); len(hits) != 0 {
		t.Errorf("vector index not cleared: %v", hits)
	}
}
