// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists articles, the user profile, and embedding
// vectors in a single SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const dbFile = "paper-scout.db"

// ErrNotFound is returned when a referenced article does not exist.
var ErrNotFound = errors.New("article not found")

// Store manages the paper-scout SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.DataDir/paper-scout.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle so the embedding index can share the
// same database file and transaction domain.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			url TEXT,
			published TEXT,
			fetched TEXT NOT NULL,
			topics TEXT,
			processed INTEGER NOT NULL DEFAULT 0,
			citation_count INTEGER,
			has_implementation INTEGER NOT NULL DEFAULT 0,
			is_read INTEGER NOT NULL DEFAULT 0,
			rating INTEGER,
			UNIQUE(source, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			article_id INTEGER PRIMARY KEY REFERENCES articles(id) ON DELETE CASCADE,
			dim INTEGER NOT NULL,
			vector BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			interests TEXT,
			skill_level TEXT NOT NULL,
			preferred_sources TEXT,
			daily_reading_goal INTEGER NOT NULL,
			created TEXT NOT NULL,
			updated TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const articleColumns = `id, source, source_id, title, authors, abstract, url,
	published, fetched, topics, processed, citation_count,
	has_implementation, is_read, rating`

// Insert adds a new article and assigns its surrogate id. The fetched
// timestamp is set if zero.
func (s *Store) Insert(ctx context.Context, a *types.Article) error {
	if a.Fetched.IsZero() {
		a.Fetched = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (source, source_id, title, authors, abstract, url,
			published, fetched, topics, processed, citation_count,
			has_implementation, is_read, rating)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.Source), a.SourceID, a.Title, marshalStrings(a.Authors),
		a.Abstract, a.URL, formatDate(a.Published), formatTime(a.Fetched),
		marshalStrings(a.Topics), a.Processed, nullableInt(a.CitationCount),
		a.HasImplementation, a.IsRead, nullableInt(a.Rating),
	)
	if err != nil {
		return fmt.Errorf("inserting article %s/%s: %w", a.Source, a.SourceID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted id: %w", err)
	}
	a.ID = id
	return nil
}

// Update rewrites an existing article record identified by its id.
func (s *Store) Update(ctx context.Context, a *types.Article) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET source = ?, source_id = ?, title = ?, authors = ?,
			abstract = ?, url = ?, published = ?, topics = ?, processed = ?,
			citation_count = ?, has_implementation = ?, is_read = ?, rating = ?
		 WHERE id = ?`,
		string(a.Source), a.SourceID, a.Title, marshalStrings(a.Authors),
		a.Abstract, a.URL, formatDate(a.Published), marshalStrings(a.Topics),
		a.Processed, nullableInt(a.CitationCount), a.HasImplementation,
		a.IsRead, nullableInt(a.Rating), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating article %d: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating article %d: %w", a.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("updating article %d: %w", a.ID, ErrNotFound)
	}
	return nil
}

// Get returns the article with the given surrogate id.
func (s *Store) Get(ctx context.Context, id int64) (*types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return a, err
}

// GetBySourceKey returns the article with the given natural key, or
// ErrNotFound.
func (s *Store) GetBySourceKey(ctx context.Context, source types.Source, sourceID string) (*types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE source = ? AND source_id = ?`,
		string(source), sourceID)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article %s/%s: %w", source, sourceID, ErrNotFound)
	}
	return a, err
}

// GetByURL returns the earliest-admitted article with the given URL, or
// ErrNotFound.
func (s *Store) GetByURL(ctx context.Context, url string) (*types.Article, error) {
	if url == "" {
		return nil, fmt.Errorf("article by URL: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE url = ? ORDER BY id LIMIT 1`, url)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article with url %s: %w", url, ErrNotFound)
	}
	return a, err
}

// Delete removes an article. The embeddings row cascades.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	return nil
}

// SetRead updates the read flag of the engagement overlay.
func (s *Store) SetRead(ctx context.Context, id int64, read bool) error {
	return s.setEngagement(ctx, id, `UPDATE articles SET is_read = ? WHERE id = ?`, read)
}

// SetRating updates the 1-5 star rating of the engagement overlay.
func (s *Store) SetRating(ctx context.Context, id int64, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d: must be between 1 and 5", rating)
	}
	return s.setEngagement(ctx, id, `UPDATE articles SET rating = ? WHERE id = ?`, rating)
}

func (s *Store) setEngagement(ctx context.Context, id int64, query string, value any) error {
	res, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("updating article %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*types.Article, error) {
	var (
		a             types.Article
		source        string
		authorsJSON   sql.NullString
		topicsJSON    sql.NullString
		published     sql.NullString
		fetched       string
		citationCount sql.NullInt64
		rating        sql.NullInt64
	)

	if err := row.Scan(
		&a.ID, &source, &a.SourceID, &a.Title, &authorsJSON, &a.Abstract,
		&a.URL, &published, &fetched, &topicsJSON, &a.Processed,
		&citationCount, &a.HasImplementation, &a.IsRead, &rating,
	); err != nil {
		return nil, err
	}

	a.Source = types.Source(source)
	a.Authors = unmarshalStrings(authorsJSON)
	a.Topics = unmarshalStrings(topicsJSON)
	a.Published = parseTime(published.String)
	a.Fetched = parseTime(fetched)
	if citationCount.Valid {
		v := int(citationCount.Int64)
		a.CitationCount = &v
	}
	if rating.Valid {
		v := int(rating.Int64)
		a.Rating = &v
	}
	return &a, nil
}

// placeholderBuilder is the squirrel builder configured for SQLite.
var placeholderBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshalStrings(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v []string
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return nil
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// formatDate stores published dates at second precision so the stored
// strings sort chronologically in SQL range filters.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
