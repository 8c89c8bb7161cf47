package cli

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"docqa/config"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/retriever"
	"docqa/internal/adapter/store"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

// openStore opens the chunk database, failing when no index exists yet.
func openStore() (*store.BoltStore, error) {
	dbPath := config.StoreDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no index found. Run 'docqa index' first")
	}
	return store.NewBoltStore(dbPath, GetConfig().Embedding.Dimension)
}

// newEmbedder builds the configured embedding client.
func newEmbedder() (port.Embedder, error) {
	ec := GetConfig().Embedding
	switch ec.Provider {
	case "openai", "":
		if ec.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(ec.APIKeyEnv, ec.Model, ec.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(ec.APIKeyEnv, ec.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(ec.Model, ec.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(ec.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", ec.Provider)
	}
}

// newReranker decides the reranker capability once, at construction.
// Any construction failure fixes the Unavailable state for the life of
// the process; queries then skip reranking silently.
func newReranker(log *zap.Logger) port.Reranker {
	rc := GetConfig().Rerank
	if !rc.Enabled {
		return port.NoopReranker{}
	}

	reranker, err := retriever.NewCohereReranker(rc.APIKeyEnv, rc.Model)
	if err != nil {
		log.Warn("cross-encoder unavailable, reranking disabled", zap.Error(err))
		return port.NoopReranker{}
	}

	log.Info("cross-encoder ready", zap.String("model", reranker.ModelName()))
	return reranker
}

// newRankPipeline wires the full ranking pipeline over an open store.
func newRankPipeline(st *store.BoltStore, log *zap.Logger) (*usecase.RankUseCase, error) {
	cfg := GetConfig()

	embedder, err := newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	semantic := retriever.NewSemanticRetriever(
		embedder,
		st,
		st,
		embedding.NewCache(100, 5*time.Minute),
		cfg.Retrieve.ScanLimit,
		log,
	)

	hybrid := retriever.NewHybridScorer(cfg.Retrieve.KeywordBoost)

	return usecase.NewRankUseCase(
		semantic,
		hybrid,
		newReranker(log),
		time.Duration(cfg.Retrieve.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Rerank.TimeoutSeconds)*time.Second,
		log,
	), nil
}
