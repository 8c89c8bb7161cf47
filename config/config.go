package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document QA tool.
type Config struct {
	Docs      DocsConfig      `yaml:"docs"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DocsConfig holds document ingestion configuration.
type DocsConfig struct {
	Dir          string   `yaml:"dir"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`    // characters per chunk
	ChunkOverlap int      `yaml:"chunk_overlap"` // overlapping characters
}

// RetrieveConfig holds ranking pipeline configuration.
type RetrieveConfig struct {
	TopK           int     `yaml:"top_k"`
	KeywordBoost   float64 `yaml:"keyword_boost"`   // weight of lexical signal (0-1)
	ScanLimit      int     `yaml:"scan_limit"`      // max records for the fallback linear scan
	TimeoutSeconds int     `yaml:"timeout_seconds"` // bound on the retrieval call
}

// RerankConfig holds cross-encoder reranking configuration.
type RerankConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // bound on the rerank call
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// ChatConfig holds answer generation configuration.
type ChatConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Docs: DocsConfig{
			Dir:          "./docs",
			Includes:     []string{"**/*.txt", "**/*.md"},
			Excludes:     []string{"**/.git/**", "**/node_modules/**"},
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retrieve: RetrieveConfig{
			TopK:           20,
			KeywordBoost:   0.6, // lexical-heavy: embeddings underperform on the working corpus
			ScanLimit:      100,
			TimeoutSeconds: 30,
		},
		Rerank: RerankConfig{
			Enabled:        false, // requires an API key
			Model:          "rerank-english-v3.0",
			APIKeyEnv:      "COHERE_API_KEY",
			TimeoutSeconds: 30,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Chat: ChatConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the chunk database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".docqa", "store.db")
}

// EnsureStateDir ensures the .docqa directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docqa"), 0755)
}
