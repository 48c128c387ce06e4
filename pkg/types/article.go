// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Source identifies the platform an article was ingested from.
type Source string

const (
	SourceArxiv           Source = "arxiv"
	SourceSemanticScholar Source = "semantic_scholar"
	SourceRSS             Source = "rss"
)

// Article is a research-paper record with source identity, content
// metadata, and a user engagement overlay. The (Source, SourceID) pair is
// the natural key; ID is the surrogate key assigned on admission and
// stable for the article's lifetime.
type Article struct {
	// ID is the surrogate key assigned by the store on admission.
	ID int64 `json:"id" yaml:"id"`

	// Source is the platform the article came from.
	Source Source `json:"source" yaml:"source"`

	// SourceID is the platform-specific identifier (e.g. "2301.07041").
	SourceID string `json:"source_id" yaml:"source_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL links to the article landing page.
	URL string `json:"url" yaml:"url"`

	// Published is the publication or preprint date. Zero if unknown.
	Published time.Time `json:"published" yaml:"published"`

	// Fetched records when the article was first admitted.
	Fetched time.Time `json:"fetched" yaml:"fetched"`

	// Topics are free-text topic strings, empty until a processing step
	// supplies them.
	Topics []string `json:"topics" yaml:"topics"`

	// Processed reports whether topic extraction has run for the article.
	Processed bool `json:"processed" yaml:"processed"`

	// CitationCount is nil when no citation data has been seen for the
	// article, which scores differently from a known count of zero.
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// HasImplementation reports whether a code implementation is linked.
	HasImplementation bool `json:"has_implementation" yaml:"has_implementation"`

	// IsRead is part of the engagement overlay, mutated by the user.
	IsRead bool `json:"is_read" yaml:"is_read"`

	// Rating is the 1-5 star rating, nil if unrated.
	Rating *int `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// Citations returns the citation count, or 0 when unknown.
func (a *Article) Citations() int {
	if a.CitationCount == nil {
		return 0
	}
	return *a.CitationCount
}

// Engaged reports whether the user has interacted with the article. Used
// by the deduplicator to decide whose engagement overlay survives a merge.
func (a *Article) Engaged() bool {
	return a.IsRead || a.Rating != nil
}

// RawArticle is the payload ingestion sources hand to the deduplicator.
// It carries no surrogate id or engagement overlay; those belong to the
// store.
type RawArticle struct {
	Source            Source    `json:"source" yaml:"source"`
	SourceID          string    `json:"source_id" yaml:"source_id"`
	Title             string    `json:"title" yaml:"title"`
	Authors           []string  `json:"authors,omitempty" yaml:"authors,omitempty"`
	Abstract          string    `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	URL               string    `json:"url,omitempty" yaml:"url,omitempty"`
	Published         time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	Topics            []string  `json:"topics,omitempty" yaml:"topics,omitempty"`
	CitationCount     *int      `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
	HasImplementation bool      `json:"has_implementation,omitempty" yaml:"has_implementation,omitempty"`
}
