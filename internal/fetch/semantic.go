// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// semanticAPIBase is a package variable so tests can point the client at
// a local server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const semanticPageSize = 100

// SemanticScholar fetches papers from the Semantic Scholar Graph API,
// which carries the citation counts the scorer feeds on.
type SemanticScholar struct {
	httpClient *http.Client
	userAgent  string
	apiKey     string
	maxResults int
}

// NewSemanticScholar builds a Semantic Scholar source from config. The
// API key is optional; without one the public rate limits apply.
func NewSemanticScholar(cfg types.FetchConfig) *SemanticScholar {
	max := cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return &SemanticScholar{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		apiKey:     cfg.SemanticScholarAPIKey,
		maxResults: max,
	}
}

// Name implements Source.
func (s *SemanticScholar) Name() string { return string(types.SourceSemanticScholar) }

type semanticSearchResponse struct {
	Total int             `json:"total"`
	Next  int             `json:"next"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string `json:"paperId"`
	Title           string `json:"title"`
	Abstract        string `json:"abstract"`
	URL             string `json:"url"`
	Year            int    `json:"year"`
	PublicationDate string `json:"publicationDate"`
	CitationCount   *int   `json:"citationCount"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	FieldsOfStudy []string `json:"fieldsOfStudy"`
}

// Fetch implements Source, paging through search results until max
// articles are collected or the results run out. When a later page is
// rate limited, the articles already collected are returned together
// with the error so the run keeps its partial batch.
func (s *SemanticScholar) Fetch(ctx context.Context, query string, max int) ([]types.RawArticle, error) {
	if max <= 0 || max > s.maxResults {
		max = s.maxResults
	}

	var articles []types.RawArticle
	offset := 0
	for len(articles) < max {
		limit := max - len(articles)
		if limit > semanticPageSize {
			limit = semanticPageSize
		}

		page, next, err := s.fetchPage(ctx, query, offset, limit)
		if err != nil {
			if errors.Is(err, httputil.ErrRateLimited) && len(articles) > 0 {
				return articles, err
			}
			return nil, err
		}
		articles = append(articles, page...)
		// A page can carry more rows than requested; never exceed max.
		if len(articles) > max {
			articles = articles[:max]
		}

		if next <= 0 || len(page) == 0 {
			break
		}
		offset = next
	}
	return articles, nil
}

func (s *SemanticScholar) fetchPage(ctx context.Context, query string, offset, limit int) ([]types.RawArticle, int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fields", "title,abstract,url,year,publicationDate,citationCount,authors,fieldsOfStudy")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		semanticAPIBase+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating semantic scholar request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.httpClient, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("querying semantic scholar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("querying semantic scholar: HTTP %d", resp.StatusCode)
	}

	var sr semanticSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("parsing semantic scholar response: %w", err)
	}

	articles := make([]types.RawArticle, 0, len(sr.Data))
	for _, p := range sr.Data {
		if p.PaperID == "" || p.Title == "" {
			continue
		}

		authors := make([]string, 0, len(p.Authors))
		for _, au := range p.Authors {
			if au.Name != "" {
				authors = append(authors, au.Name)
			}
		}

		published := parseDate(p.PublicationDate)
		if published.IsZero() && p.Year > 0 {
			published = time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		}

		articles = append(articles, types.RawArticle{
			Source:        types.SourceSemanticScholar,
			SourceID:      p.PaperID,
			Title:         p.Title,
			Authors:       authors,
			Abstract:      p.Abstract,
			URL:           p.URL,
			Published:     published,
			Topics:        p.FieldsOfStudy,
			CitationCount: p.CitationCount,
		})
	}
	return articles, sr.Next, nil
}
