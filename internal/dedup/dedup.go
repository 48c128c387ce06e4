// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup admits incoming articles into the store while keeping
// exactly one record per real-world paper. Matchers run in a fixed
// order, from cheap and precise to expensive and fuzzy: natural key,
// URL, normalized title with author overlap, and embedding similarity.
// The first match wins; the embedding matcher needs stored vectors on
// both sides, so it only runs during the re-dedup pass.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-scout/internal/store"
	"github.com/pdiddy/paper-scout/internal/vecindex"
	"github.com/pdiddy/paper-scout/pkg/types"
)

const (
	defaultTitleSimilarity     = 0.9
	defaultEmbeddingSimilarity = 0.95
)

// Outcome states what Admit did with an incoming article.
type Outcome string

const (
	// OutcomeInserted means no duplicate was found and a new record was
	// created.
	OutcomeInserted Outcome = "inserted"

	// OutcomeRefreshed means the natural key matched an existing record,
	// whose metadata was refreshed in place.
	OutcomeRefreshed Outcome = "refreshed"

	// OutcomeMerged means a cross-source duplicate was found and the
	// incoming metadata was folded into the existing record.
	OutcomeMerged Outcome = "merged"
)

// Result reports the admission decision for one incoming article.
type Result struct {
	// Article is the surviving stored record, with its stable id.
	Article *types.Article

	// Outcome is the admission decision.
	Outcome Outcome

	// MatchedBy names the matcher that found the duplicate: "source_id",
	// "url", "title", or "embedding". Empty for inserts.
	MatchedBy string
}

// Deduplicator admits articles and merges duplicates.
type Deduplicator struct {
	store *store.Store
	index *vecindex.Index

	titleSimilarity     float64
	embeddingSimilarity float64
}

// New builds a Deduplicator, filling zero thresholds with defaults.
func New(s *store.Store, ix *vecindex.Index, cfg types.DedupConfig) *Deduplicator {
	d := &Deduplicator{
		store:               s,
		index:               ix,
		titleSimilarity:     cfg.TitleSimilarity,
		embeddingSimilarity: cfg.EmbeddingSimilarity,
	}
	if d.titleSimilarity <= 0 {
		d.titleSimilarity = defaultTitleSimilarity
	}
	if d.embeddingSimilarity <= 0 {
		d.embeddingSimilarity = defaultEmbeddingSimilarity
	}
	return d
}

// Admit runs the matcher chain for one incoming article and either
// refreshes the matched record, merges into it, or inserts a new one.
// The surviving record's id never changes across admissions.
func (d *Deduplicator) Admit(ctx context.Context, raw types.RawArticle) (Result, error) {
	if raw.Title == "" {
		return Result{}, fmt.Errorf("admitting article %s/%s: empty title", raw.Source, raw.SourceID)
	}
	if raw.SourceID == "" {
		return Result{}, fmt.Errorf("admitting article from %s: empty source id", raw.Source)
	}

	// Matcher 1: natural key. Same platform record seen again.
	existing, err := d.store.GetBySourceKey(ctx, raw.Source, raw.SourceID)
	if err == nil {
		if err := d.refresh(ctx, existing, raw); err != nil {
			return Result{}, err
		}
		return Result{Article: existing, Outcome: OutcomeRefreshed, MatchedBy: "source_id"}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Result{}, err
	}

	// Matcher 2: URL. The same landing page via a different platform.
	if raw.URL != "" {
		existing, err = d.store.GetByURL(ctx, raw.URL)
		if err == nil {
			if err := d.refresh(ctx, existing, raw); err != nil {
				return Result{}, err
			}
			return Result{Article: existing, Outcome: OutcomeMerged, MatchedBy: "url"}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return Result{}, err
		}
	}

	// Matcher 3: normalized title plus author overlap.
	existing, err = d.findByTitle(ctx, raw.Title, raw.Authors)
	if err != nil {
		return Result{}, err
	}
	if existing != nil {
		if err := d.refresh(ctx, existing, raw); err != nil {
			return Result{}, err
		}
		return Result{Article: existing, Outcome: OutcomeMerged, MatchedBy: "title"}, nil
	}

	a := &types.Article{
		Source:            raw.Source,
		SourceID:          raw.SourceID,
		Title:             raw.Title,
		Authors:           raw.Authors,
		Abstract:          raw.Abstract,
		URL:               raw.URL,
		Published:         raw.Published,
		Topics:            raw.Topics,
		CitationCount:     raw.CitationCount,
		HasImplementation: raw.HasImplementation,
	}
	if err := d.store.Insert(ctx, a); err != nil {
		return Result{}, err
	}
	return Result{Article: a, Outcome: OutcomeInserted}, nil
}

// refresh folds incoming metadata into an existing record. The id and
// the user's engagement overlay are never touched.
func (d *Deduplicator) refresh(ctx context.Context, existing *types.Article, raw types.RawArticle) error {
	if raw.CitationCount != nil {
		existing.CitationCount = preferCitations(existing.CitationCount, raw.CitationCount)
	}
	existing.HasImplementation = existing.HasImplementation || raw.HasImplementation
	existing.Topics = unionStrings(existing.Topics, raw.Topics)
	if existing.Abstract == "" {
		existing.Abstract = raw.Abstract
	}
	if existing.URL == "" {
		existing.URL = raw.URL
	}
	if existing.Published.IsZero() {
		existing.Published = raw.Published
	}
	if len(existing.Authors) == 0 {
		existing.Authors = raw.Authors
	}
	return d.store.Update(ctx, existing)
}

// findByTitle scans stored articles for one whose normalized title is
// close to the incoming title and that shares at least one author.
// Author overlap is required: fuzzy titles alone are too loose for
// short, generic paper names.
func (d *Deduplicator) findByTitle(ctx context.Context, title string, authors []string) (*types.Article, error) {
	if len(authors) == 0 {
		return nil, nil
	}

	normalized := normalizeTitle(title)
	if normalized == "" {
		return nil, nil
	}

	articles, err := d.store.List(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range articles {
		a := &articles[i]
		if titleSimilarity(normalized, normalizeTitle(a.Title)) < d.titleSimilarity {
			continue
		}
		if authorsOverlap(authors, a.Authors) {
			return a, nil
		}
	}
	return nil, nil
}

// Rededup sweeps the stored corpus for duplicates that slipped past
// admission: fuzzy title pairs, then embedding near-duplicates among
// indexed articles. The earlier-admitted record of each pair survives.
// Progress lines go to w; the merge count is returned.
func (d *Deduplicator) Rededup(ctx context.Context, w io.Writer) (int, error) {
	merged := 0
	removed := map[int64]bool{}

	articles, err := d.store.List(ctx, store.Filter{})
	if err != nil {
		return 0, err
	}

	normalized := make([]string, len(articles))
	for i := range articles {
		normalized[i] = normalizeTitle(articles[i].Title)
	}

	for i := range articles {
		if removed[articles[i].ID] {
			continue
		}
		for j := i + 1; j < len(articles); j++ {
			if removed[articles[j].ID] {
				continue
			}
			if titleSimilarity(normalized[i], normalized[j]) < d.titleSimilarity {
				continue
			}
			if !authorsOverlap(articles[i].Authors, articles[j].Authors) {
				continue
			}
			if err := d.mergeStored(ctx, &articles[i], &articles[j]); err != nil {
				return merged, err
			}
			removed[articles[j].ID] = true
			merged++
			fmt.Fprintf(w, "merged #%d into #%d (title: %s)\n", articles[j].ID, articles[i].ID, articles[i].Title)
		}
	}

	for i := range articles {
		a := &articles[i]
		if removed[a.ID] {
			continue
		}
		vec, err := d.index.Vector(ctx, a.ID)
		if err != nil {
			return merged, err
		}
		if vec == nil {
			continue
		}
		matches, err := d.index.Query(ctx, vec, 0, d.embeddingSimilarity)
		if err != nil {
			return merged, err
		}
		for _, m := range matches {
			// The article matches itself at similarity 1; only merge
			// later-admitted neighbors so the earlier record survives.
			if m.ArticleID <= a.ID || removed[m.ArticleID] {
				continue
			}
			other, err := d.store.Get(ctx, m.ArticleID)
			if err != nil {
				return merged, err
			}
			if err := d.mergeStored(ctx, a, other); err != nil {
				return merged, err
			}
			removed[other.ID] = true
			merged++
			fmt.Fprintf(w, "merged #%d into #%d (embedding: %.3f)\n", other.ID, a.ID, m.Similarity)
		}
	}

	return merged, nil
}

// mergeStored folds drop into keep and deletes drop. keep retains its
// id; drop's engagement overlay survives when keep has none of its own.
func (d *Deduplicator) mergeStored(ctx context.Context, keep, drop *types.Article) error {
	keep.CitationCount = preferCitations(keep.CitationCount, drop.CitationCount)
	keep.HasImplementation = keep.HasImplementation || drop.HasImplementation
	keep.Topics = unionStrings(keep.Topics, drop.Topics)
	if len(drop.Abstract) > len(keep.Abstract) {
		keep.Abstract = drop.Abstract
	}
	if keep.URL == "" {
		keep.URL = drop.URL
	}
	if keep.Published.IsZero() {
		keep.Published = drop.Published
	}
	if len(keep.Authors) < len(drop.Authors) {
		keep.Authors = drop.Authors
	}
	if !keep.Engaged() && drop.Engaged() {
		keep.IsRead = drop.IsRead
		keep.Rating = drop.Rating
	}

	if err := d.store.Update(ctx, keep); err != nil {
		return err
	}

	// Move the vector over if only the dropped record was indexed.
	keepVec, err := d.index.Vector(ctx, keep.ID)
	if err != nil {
		return err
	}
	if keepVec == nil {
		dropVec, err := d.index.Vector(ctx, drop.ID)
		if err != nil {
			return err
		}
		if dropVec != nil {
			if err := d.index.Upsert(ctx, keep.ID, dropVec); err != nil {
				return err
			}
		}
	}

	return d.store.Delete(ctx, drop.ID)
}

// preferCitations picks the better of two counts: a known count beats
// an unknown one, and the larger count wins since citations only grow.
func preferCitations(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	default:
		return a
	}
}

// unionStrings appends items from b not already in a, case-insensitively,
// preserving a's order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[strings.ToLower(s)] = true
	}
	out := a
	for _, s := range b {
		if !seen[strings.ToLower(s)] {
			seen[strings.ToLower(s)] = true
			out = append(out, s)
		}
	}
	return out
}

// authorsOverlap reports whether the two author lists share at least one
// name, compared case-insensitively.
func authorsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	names := make(map[string]bool, len(a))
	for _, s := range a {
		names[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, s := range b {
		if names[strings.ToLower(strings.TrimSpace(s))] {
			return true
		}
	}
	return false
}
