// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func testClient(url string) *Client {
	return NewClient(types.EmbeddingConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "paper-scout/test"},
		BaseURL:    url,
		Model:      "all-minilm",
	})
}

func TestEmbed(t *testing.T) {
	var gotReq embeddingRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer ts.Close()

	vec, err := testClient(ts.URL).Embed(context.Background(), "attention is all you need")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "all-minilm", gotReq.Model)
	assert.Equal(t, "attention is all you need", gotReq.Input)
}

func TestEmbedSendsAPIKey(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1}}},
		})
	}))
	defer ts.Close()

	c := NewClient(types.EmbeddingConfig{BaseURL: ts.URL, Model: "m", APIKey: "sek"})
	_, err := c.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sek", gotAuth)
}

func TestEmbedServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbedEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable, "an empty embedding must be an error, never a silent zero vector")
}

func TestEmbedRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, httputil.ErrRateLimited)
}

func TestEmbedNoBaseURL(t *testing.T) {
	c := NewClient(types.EmbeddingConfig{})
	_, err := c.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
