// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Filter selects candidate articles for ranking and deduplication.
// Zero-valued fields are ignored.
type Filter struct {
	// PublishedSince keeps articles published on or after the given time.
	PublishedSince time.Time

	// UnreadOnly excludes articles the user has marked read.
	UnreadOnly bool

	// Sources restricts results to the given sources.
	Sources []types.Source

	// MinRating keeps articles rated at or above the given value.
	MinRating int

	// Limit caps the number of rows. Zero means no cap.
	Limit uint64
}

// List returns articles matching the filter, ordered by id ascending.
func (s *Store) List(ctx context.Context, f Filter) ([]types.Article, error) {
	qb := placeholderBuilder.
		Select("id", "source", "source_id", "title", "authors", "abstract",
			"url", "published", "fetched", "topics", "processed",
			"citation_count", "has_implementation", "is_read", "rating").
		From("articles").
		OrderBy("id")

	if !f.PublishedSince.IsZero() {
		qb = qb.Where(sq.GtOrEq{"published": formatDate(f.PublishedSince)})
	}
	if f.UnreadOnly {
		qb = qb.Where(sq.Eq{"is_read": false})
	}
	if len(f.Sources) > 0 {
		sources := make([]string, len(f.Sources))
		for i, src := range f.Sources {
			sources[i] = string(src)
		}
		qb = qb.Where(sq.Eq{"source": sources})
	}
	if f.MinRating > 0 {
		qb = qb.Where(sq.GtOrEq{"rating": f.MinRating})
	}
	if f.Limit > 0 {
		qb = qb.Limit(f.Limit)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building article query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// Count returns the total number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}
