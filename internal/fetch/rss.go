// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// RSS fetches articles from configured RSS 2.0 feeds: lab blogs,
// journal alerts, anything that syndicates. The query is ignored; a
// feed returns whatever it carries.
type RSS struct {
	httpClient *http.Client
	userAgent  string
	feedURLs   []string
	maxResults int
}

// NewRSS builds an RSS source from config.
func NewRSS(cfg types.FetchConfig) *RSS {
	max := cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return &RSS{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		feedURLs:   cfg.FeedURLs,
		maxResults: max,
	}
}

// Name implements Source.
func (r *RSS) Name() string { return string(types.SourceRSS) }

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
	Creator     string `xml:"creator"`
}

// Fetch implements Source, polling every configured feed. A broken feed
// is skipped after the first failure; articles from healthy feeds are
// returned alongside the last error.
func (r *RSS) Fetch(ctx context.Context, _ string, max int) ([]types.RawArticle, error) {
	if max <= 0 || max > r.maxResults {
		max = r.maxResults
	}

	var (
		articles []types.RawArticle
		lastErr  error
	)
	for _, feedURL := range r.feedURLs {
		if len(articles) >= max {
			break
		}
		items, err := r.fetchFeed(ctx, feedURL)
		if err != nil {
			lastErr = fmt.Errorf("feed %s: %w", feedURL, err)
			continue
		}
		for _, item := range items {
			if len(articles) >= max {
				break
			}
			articles = append(articles, item)
		}
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return articles, lastErr
}

func (r *RSS) fetchFeed(ctx context.Context, feedURL string) ([]types.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := httputil.DoWithRetry(ctx, r.httpClient, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	articles := make([]types.RawArticle, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		sourceID := item.GUID
		if sourceID == "" {
			sourceID = item.Link
		}
		if sourceID == "" {
			continue
		}

		var authors []string
		if creator := strings.TrimSpace(item.Creator); creator != "" {
			authors = []string{creator}
		}

		articles = append(articles, types.RawArticle{
			Source:    types.SourceRSS,
			SourceID:  sourceID,
			Title:     title,
			Authors:   authors,
			Abstract:  strings.TrimSpace(item.Description),
			URL:       item.Link,
			Published: parseDate(item.PubDate),
		})
	}
	return articles, nil
}
