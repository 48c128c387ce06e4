// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-scout/internal/dedup"
	"github.com/pdiddy/paper-scout/internal/embed"
	"github.com/pdiddy/paper-scout/internal/recommend"
	"github.com/pdiddy/paper-scout/internal/store"
	"github.com/pdiddy/paper-scout/internal/vecindex"
	"github.com/pdiddy/paper-scout/pkg/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "paper-scout/0.1"
	defaultEmbedBaseURL = "http://localhost:11434"
	defaultEmbedModel   = "all-minilm"
)

// loadConfig assembles the full configuration from the config file and
// environment. Zero values fall through to package defaults downstream.
func loadConfig() types.Config {
	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := viper.GetString("http.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: userAgent}

	embedBase := viper.GetString("embedding.base_url")
	if embedBase == "" {
		embedBase = defaultEmbedBaseURL
	}
	embedModel := viper.GetString("embedding.model")
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}

	return types.Config{
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Embedding: types.EmbeddingConfig{
			HTTPConfig: httpCfg,
			BaseURL:    embedBase,
			Model:      embedModel,
			APIKey:     loadedSecrets.EmbeddingAPIKey(viper.GetString("embedding.api_key")),
		},
		Recommend: types.RecommendConfig{
			MaxResults:    viper.GetInt("recommend.max_results"),
			DaysBack:      viper.GetInt("recommend.days_back"),
			MinScore:      viper.GetFloat64("recommend.min_score"),
			MinSimilarity: viper.GetFloat64("recommend.min_similarity"),
			Scoring: types.ScoringConfig{
				EstablishedCitations: viper.GetInt("recommend.scoring.established_citations"),
				SaturationCitations:  viper.GetInt("recommend.scoring.saturation_citations"),
			},
		},
		Dedup: types.DedupConfig{
			TitleSimilarity:     viper.GetFloat64("dedup.title_similarity"),
			EmbeddingSimilarity: viper.GetFloat64("dedup.embedding_similarity"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig:            httpCfg,
			MaxResults:            viper.GetInt("fetch.max_results"),
			SemanticScholarAPIKey: loadedSecrets.SemanticScholarAPIKey(viper.GetString("fetch.semantic_scholar_api_key")),
			FeedURLs:              viper.GetStringSlice("fetch.feed_urls"),
		},
	}
}

// openStore opens the article database, honoring the --data-dir flag
// over the config file.
func openStore(cfg types.Config) (*store.Store, error) {
	if dir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dir != "" {
		cfg.Store.DataDir = dir
	}
	return store.Open(cfg.Store)
}

// newEngine wires the read-path engine over an open store.
func newEngine(s *store.Store, cfg types.Config) *recommend.Engine {
	ix := vecindex.New(s.DB())
	return recommend.New(s, ix, embed.NewClient(cfg.Embedding), cfg.Recommend)
}

// newDedup wires the admission deduplicator over an open store.
func newDedup(s *store.Store, cfg types.Config) *dedup.Deduplicator {
	return dedup.New(s, vecindex.New(s.DB()), cfg.Dedup)
}
