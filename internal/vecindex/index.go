// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vecindex maintains one embedding vector per article and answers
// nearest-neighbor queries by cosine similarity. Vectors live in the
// embeddings table of the shared SQLite database; queries are a
// brute-force scan, which is ample for a personal corpus of a few
// thousand articles.
package vecindex

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
)

// Index stores article embeddings and serves similarity queries.
type Index struct {
	db *sql.DB
}

// New wraps the shared database handle. The embeddings table is created
// by the store's schema setup.
func New(db *sql.DB) *Index {
	return &Index{db: db}
}

// Match is one nearest-neighbor result.
type Match struct {
	ArticleID  int64
	Similarity float64
}

// Upsert inserts or replaces the vector for an article as a single atomic
// write: either the full new vector becomes visible or the previous state
// remains. Re-indexing with the same vector is observationally a no-op.
func (ix *Index) Upsert(ctx context.Context, articleID int64, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("upserting vector for article %d: empty vector", articleID)
	}

	var dim int
	err := ix.db.QueryRowContext(ctx, `SELECT dim FROM embeddings LIMIT 1`).Scan(&dim)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking index dimension: %w", err)
	}
	if err == nil && dim != len(vec) {
		return fmt.Errorf("upserting vector for article %d: dimension %d does not match index dimension %d",
			articleID, len(vec), dim)
	}

	_, err = ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (article_id, dim, vector) VALUES (?, ?, ?)`,
		articleID, len(vec), encodeVector(vec))
	if err != nil {
		return fmt.Errorf("upserting vector for article %d: %w", articleID, err)
	}
	return nil
}

// Remove deletes the vector for an article. Removing an absent vector is
// not an error.
func (ix *Index) Remove(ctx context.Context, articleID int64) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM embeddings WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("removing vector for article %d: %w", articleID, err)
	}
	return nil
}

// Contains reports whether the article has a stored vector. Used to skip
// redundant embedding work.
func (ix *Index) Contains(ctx context.Context, articleID int64) (bool, error) {
	var n int
	err := ix.db.QueryRowContext(ctx,
		`SELECT count(*) FROM embeddings WHERE article_id = ?`, articleID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking vector for article %d: %w", articleID, err)
	}
	return n > 0, nil
}

// Vector returns the stored vector for an article, or (nil, nil) when the
// article is not indexed.
func (ix *Index) Vector(ctx context.Context, articleID int64) ([]float32, error) {
	var blob []byte
	err := ix.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE article_id = ?`, articleID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vector for article %d: %w", articleID, err)
	}
	return decodeVector(blob)
}

// Count returns the number of indexed articles.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Query returns up to k articles whose vectors have cosine similarity of
// at least minSimilarity with the query vector, sorted by similarity
// descending with ties broken by lower article id. An empty index yields
// an empty result, never an error.
func (ix *Index) Query(ctx context.Context, query []float32, k int, minSimilarity float64) ([]Match, error) {
	qm := magnitude(query)
	if qm == 0 {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx, `SELECT article_id, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", id, err)
		}
		if len(vec) != len(query) {
			return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), len(vec))
		}

		vm := magnitude(vec)
		if vm == 0 {
			continue
		}
		sim := dot(query, vec) / (qm * vm)
		if math.IsNaN(sim) || sim < minSimilarity {
			continue
		}
		matches = append(matches, Match{ArticleID: id, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ArticleID < matches[j].ArticleID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
