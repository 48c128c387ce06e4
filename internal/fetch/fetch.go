// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch pulls recent articles from the supported platforms and
// normalizes them into raw articles for admission. Each source is
// independent; a failing source never hides the results of another.
package fetch

import (
	"context"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const defaultMaxResults = 50

// Source fetches recent articles from one platform. Implementations
// return the articles collected so far together with the error when a
// run fails partway, so partial batches are never lost.
type Source interface {
	// Name identifies the source in progress output.
	Name() string

	// Fetch returns up to max articles matching the query, newest first.
	Fetch(ctx context.Context, query string, max int) ([]types.RawArticle, error)
}

// parseDate tries the date layouts seen across the supported platforms.
// An unparseable date comes back zero; admission treats it as unknown.
func parseDate(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"2006-01-02",
		"Mon, 2 Jan 2006 15:04:05 -0700",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
