// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend orchestrates the store, the embedding index, the
// embedding client, and the scorer into the three read paths of the
// engine: personalized recommendations, semantic search, and
// find-similar. It also drives reindexing, the only write path that
// talks to the embedding service.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/score"
	"github.com/pdiddy/paper-scout/internal/store"
	"github.com/pdiddy/paper-scout/internal/vecindex"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// ErrUnindexed is returned by FindSimilar when the anchor article exists
// but has no stored vector. Distinguishable from store.ErrNotFound so
// callers can suggest reindexing instead of reporting a missing article.
var ErrUnindexed = errors.New("article not indexed")

// ErrInvalidProfile is returned when the stored profile fails validation.
var ErrInvalidProfile = errors.New("invalid profile")

const (
	defaultMaxResults = 10
	defaultDaysBack   = 30
	defaultMinScore   = 0.1
	defaultMinSim     = 0.3
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine serves ranked reads over the article corpus.
type Engine struct {
	store    *store.Store
	index    *vecindex.Index
	embedder Embedder
	scorer   *score.Scorer

	maxResults    int
	daysBack      int
	minScore      float64
	minSimilarity float64

	now func() time.Time
}

// New builds an Engine, filling zero config values with defaults.
func New(s *store.Store, ix *vecindex.Index, e Embedder, cfg types.RecommendConfig) *Engine {
	eng := &Engine{
		store:         s,
		index:         ix,
		embedder:      e,
		scorer:        score.New(cfg.Scoring),
		maxResults:    cfg.MaxResults,
		daysBack:      cfg.DaysBack,
		minScore:      cfg.MinScore,
		minSimilarity: cfg.MinSimilarity,
		now:           time.Now,
	}
	if eng.maxResults <= 0 {
		eng.maxResults = defaultMaxResults
	}
	if eng.daysBack <= 0 {
		eng.daysBack = defaultDaysBack
	}
	if eng.minScore <= 0 {
		eng.minScore = defaultMinScore
	}
	if eng.minSimilarity <= 0 {
		eng.minSimilarity = defaultMinSim
	}
	return eng
}

// Recommendation is one ranked article with its score explanation.
type Recommendation struct {
	Article types.Article  `json:"article" yaml:"article"`
	Score   float64        `json:"score" yaml:"score"`
	Reasons []score.Reason `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// SearchResult is one similarity-ranked article.
type SearchResult struct {
	Article    types.Article `json:"article" yaml:"article"`
	Similarity float64       `json:"similarity" yaml:"similarity"`
}

// Options tunes a single read call. Zero values fall back to the
// engine's configured defaults.
type Options struct {
	// Limit caps the number of results.
	Limit int

	// DaysBack overrides the candidate lookback window for Recommend.
	DaysBack int

	// IncludeRead lets already-read articles back into Recommend
	// results; by default the user only sees what they have not read.
	IncludeRead bool

	// MinScore overrides the recommendation score floor.
	MinScore float64

	// MinSimilarity overrides the similarity floor for SemanticSearch
	// and FindSimilar.
	MinSimilarity float64
}

// Recommend ranks recent candidates against the stored profile. The
// result is deterministic for a fixed corpus and profile: ties in score
// break by newer publication date, then higher citation count, then
// lower article id.
func (e *Engine) Recommend(ctx context.Context, opts Options) ([]Recommendation, error) {
	profile, err := e.store.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.maxResults
	}
	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = e.daysBack
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = e.minScore
	}

	now := e.now().UTC()
	lookback := time.Duration(daysBack) * 24 * time.Hour

	candidates, err := e.store.List(ctx, store.Filter{
		PublishedSince: now.Add(-lookback),
		UnreadOnly:     !opts.IncludeRead,
	})
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		res := e.scorer.Score(profile, &candidates[i], now, lookback)
		if res.Total < minScore {
			continue
		}
		recs = append(recs, Recommendation{
			Article: candidates[i],
			Score:   res.Total,
			Reasons: res.Reasons,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		return lessRanked(&recs[i].Article, &recs[j].Article, recs[i].Score, recs[j].Score)
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// SemanticSearch embeds the query text and returns the nearest articles.
// Embedding failures surface to the caller; no degraded keyword fallback
// is attempted.
func (e *Engine) SemanticSearch(ctx context.Context, query string, opts Options) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("semantic search: empty query")
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.maxResults
	}

	matches, err := e.index.Query(ctx, vec, limit, e.minSim(opts))
	if err != nil {
		return nil, err
	}
	return e.resolveMatches(ctx, matches, 0, limit)
}

// FindSimilar returns the nearest neighbors of a stored article,
// excluding the article itself. A missing article yields
// store.ErrNotFound; an existing but unindexed one yields ErrUnindexed.
func (e *Engine) FindSimilar(ctx context.Context, articleID int64, opts Options) ([]SearchResult, error) {
	if _, err := e.store.Get(ctx, articleID); err != nil {
		return nil, err
	}
	vec, err := e.index.Vector(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		return nil, fmt.Errorf("article %d: %w", articleID, ErrUnindexed)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.maxResults
	}

	// One extra slot because the anchor matches itself at similarity 1.
	matches, err := e.index.Query(ctx, vec, limit+1, e.minSim(opts))
	if err != nil {
		return nil, err
	}
	return e.resolveMatches(ctx, matches, articleID, limit)
}

func (e *Engine) minSim(opts Options) float64 {
	if opts.MinSimilarity > 0 {
		return opts.MinSimilarity
	}
	return e.minSimilarity
}

// resolveMatches loads articles for index matches, drops the excluded
// id, applies the deterministic tie-break order, and truncates.
func (e *Engine) resolveMatches(ctx context.Context, matches []vecindex.Match, exclude int64, limit int) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		if m.ArticleID == exclude {
			continue
		}
		a, err := e.store.Get(ctx, m.ArticleID)
		if err != nil {
			// A vector without its article row means the index lagged a
			// deletion; skip rather than fail the whole query.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		results = append(results, SearchResult{Article: *a, Similarity: m.Similarity})
	}

	sort.Slice(results, func(i, j int) bool {
		return lessRanked(&results[i].Article, &results[j].Article, results[i].Similarity, results[j].Similarity)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// lessRanked is the total order shared by all ranked reads: key
// descending, then newer publication date, then higher citation count,
// then lower id. The final id tie-break makes every ordering
// deterministic.
func lessRanked(ai, aj *types.Article, ki, kj float64) bool {
	if ki != kj {
		return ki > kj
	}
	if !ai.Published.Equal(aj.Published) {
		return ai.Published.After(aj.Published)
	}
	if ai.Citations() != aj.Citations() {
		return ai.Citations() > aj.Citations()
	}
	return ai.ID < aj.ID
}

// Reindex ensures the article has a stored vector. When the article is
// already indexed and force is false, the embedding service is not
// called at all. Returns whether an embedding was computed.
func (e *Engine) Reindex(ctx context.Context, articleID int64, force bool) (bool, error) {
	if !force {
		ok, err := e.index.Contains(ctx, articleID)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}

	a, err := e.store.Get(ctx, articleID)
	if err != nil {
		return false, err
	}

	vec, err := e.embedder.Embed(ctx, embedText(a))
	if err != nil {
		return false, fmt.Errorf("embedding article %d: %w", articleID, err)
	}
	if err := e.index.Upsert(ctx, articleID, vec); err != nil {
		return false, err
	}
	return true, nil
}

// ReindexSummary counts the outcome of a corpus reindex pass.
type ReindexSummary struct {
	Indexed int
	Skipped int
	Failed  int
}

// ReindexAll walks the corpus and indexes every article that needs it.
// Individual embedding failures are reported and counted but do not
// abort the pass; a rate-limited service does, since retrying the
// remaining articles would only make it worse. Work completed before an
// abort stays indexed.
func (e *Engine) ReindexAll(ctx context.Context, force bool, w io.Writer) (ReindexSummary, error) {
	var summary ReindexSummary

	articles, err := e.store.List(ctx, store.Filter{})
	if err != nil {
		return summary, err
	}

	for i := range articles {
		indexed, err := e.Reindex(ctx, articles[i].ID, force)
		if err != nil {
			if errors.Is(err, httputil.ErrRateLimited) {
				return summary, err
			}
			summary.Failed++
			fmt.Fprintf(w, "warning: article %d: %v\n", articles[i].ID, err)
			continue
		}
		if indexed {
			summary.Indexed++
		} else {
			summary.Skipped++
		}
	}

	fmt.Fprintf(w, "indexed %d articles (%d already indexed, %d failed)\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

// IndexStatus reports corpus and index sizes.
func (e *Engine) IndexStatus(ctx context.Context) (articles, indexed int, err error) {
	articles, err = e.store.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	indexed, err = e.index.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return articles, indexed, nil
}

// embedText is the canonical text embedded for an article.
func embedText(a *types.Article) string {
	if a.Abstract == "" {
		return a.Title
	}
	return a.Title + "\n\n" + a.Abstract
}
