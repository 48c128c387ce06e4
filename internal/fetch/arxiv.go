// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// arxivAPIBase is a package variable so tests can point the client at a
// local server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// Arxiv fetches papers from the arXiv Atom API.
type Arxiv struct {
	httpClient *http.Client
	userAgent  string
	maxResults int
}

// NewArxiv builds an arXiv source from config.
func NewArxiv(cfg types.FetchConfig) *Arxiv {
	max := cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return &Arxiv{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxResults: max,
	}
}

// Name implements Source.
func (a *Arxiv) Name() string { return string(types.SourceArxiv) }

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string `xml:"id"`
	Title      string `xml:"title"`
	Summary    string `xml:"summary"`
	Published  string `xml:"published"`
	Authors    []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

// Fetch implements Source, querying all fields sorted by submission
// date descending.
func (a *Arxiv) Fetch(ctx context.Context, query string, max int) ([]types.RawArticle, error) {
	if max <= 0 || max > a.maxResults {
		max = a.maxResults
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", max))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating arxiv request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := httputil.DoWithRetry(ctx, a.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("querying arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("querying arxiv: HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arxiv feed: %w", err)
	}

	articles := make([]types.RawArticle, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		sourceID := arxivID(e.ID)
		if sourceID == "" || e.Title == "" {
			continue
		}

		authors := make([]string, 0, len(e.Authors))
		for _, au := range e.Authors {
			if name := strings.TrimSpace(au.Name); name != "" {
				authors = append(authors, name)
			}
		}
		topics := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			if c.Term != "" {
				topics = append(topics, c.Term)
			}
		}

		articles = append(articles, types.RawArticle{
			Source:    types.SourceArxiv,
			SourceID:  sourceID,
			Title:     collapseWhitespace(e.Title),
			Authors:   authors,
			Abstract:  collapseWhitespace(e.Summary),
			URL:       "https://arxiv.org/abs/" + sourceID,
			Published: parseDate(e.Published),
			Topics:    topics,
		})
	}
	return articles, nil
}

// arxivID extracts the bare paper id from an Atom entry id like
// "http://arxiv.org/abs/2301.07041v2", dropping the version suffix so
// revisions of a paper share one identity.
func arxivID(entryID string) string {
	idx := strings.Index(entryID, "/abs/")
	if idx < 0 {
		return ""
	}
	id := entryID[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		if isDigits(id[v+1:]) {
			id = id[:v]
		}
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// collapseWhitespace flattens the newline-wrapped text arXiv returns
// inside titles and abstracts.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
