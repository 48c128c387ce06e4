// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the article store.
type StoreConfig struct {
	// DataDir is the base directory for the SQLite database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// EmbeddingConfig holds settings for the external embedding service.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the embeddings endpoint, an OpenAI-compatible
	// /v1/embeddings API (e.g. a local Ollama or llama.cpp server).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier (e.g. "all-minilm").
	Model string `json:"model" yaml:"model"`

	// APIKey is an optional bearer token for hosted services.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ScoringConfig holds tunable constants for the scoring engine.
type ScoringConfig struct {
	// EstablishedCitations is the citation count above which a paper
	// counts as well-established for the beginner skill bonus (default 500).
	EstablishedCitations int `json:"established_citations" yaml:"established_citations"`

	// SaturationCitations is the citation count at which the citation
	// impact component saturates at 1.0 (default 1000).
	SaturationCitations int `json:"saturation_citations" yaml:"saturation_citations"`
}

// RecommendConfig holds settings for the recommendation orchestrator.
type RecommendConfig struct {
	// MaxResults is the default maximum number of results (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// DaysBack is the default candidate lookback window in days (default 30).
	DaysBack int `json:"days_back" yaml:"days_back"`

	// MinScore drops recommendations scoring below it (default 0.1).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MinSimilarity is the default similarity floor for semantic search
	// and find-similar queries (default 0.3).
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity"`

	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
}

// DedupConfig holds tunable thresholds for the ingestion deduplicator.
type DedupConfig struct {
	// TitleSimilarity is the normalized-title similarity above which two
	// articles with overlapping authors merge (default 0.9).
	TitleSimilarity float64 `json:"title_similarity" yaml:"title_similarity"`

	// EmbeddingSimilarity is the cosine similarity above which two
	// indexed articles merge (default 0.95).
	EmbeddingSimilarity float64 `json:"embedding_similarity" yaml:"embedding_similarity"`
}

// FetchConfig holds settings for the ingestion sources.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of articles per source per run
	// (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// FeedURLs lists RSS feeds to poll.
	FeedURLs []string `json:"feed_urls,omitempty" yaml:"feed_urls,omitempty"`
}

// Config groups all stage configurations.
type Config struct {
	Store     StoreConfig     `json:"store" yaml:"store"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Recommend RecommendConfig `json:"recommend" yaml:"recommend"`
	Dedup     DedupConfig     `json:"dedup" yaml:"dedup"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
}
