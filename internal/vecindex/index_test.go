// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/internal/store"
	"github.com/pdiddy/paper-scout/pkg/types"
)

func testIndex(t *testing.T) (*Index, *store.Store) {
	t.Helper()
	s, err := store.Open(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s.DB()), s
}

// addArticle inserts a stub article row so embeddings satisfy the foreign key.
func addArticle(t *testing.T, s *store.Store, sourceID string) int64 {
	t.Helper()
	a := &types.Article{Source: types.SourceArxiv, SourceID: sourceID, Title: "paper " + sourceID}
	require.NoError(t, s.Insert(context.Background(), a))
	return a.ID
}

func TestUpsertIdempotent(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id := addArticle(t, s, "a1")

	vec := []float32{1, 0, 0}
	require.NoError(t, ix.Upsert(ctx, id, vec))
	require.NoError(t, ix.Upsert(ctx, id, vec))

	n, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := ix.Query(ctx, vec, 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ArticleID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestUpsertLastWriteWins(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id := addArticle(t, s, "a1")

	require.NoError(t, ix.Upsert(ctx, id, []float32{1, 0, 0}))
	require.NoError(t, ix.Upsert(ctx, id, []float32{0, 1, 0}))

	n, err := ix.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "exactly one vector stored after two upserts")

	vec, err := ix.Vector(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vec)
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id1 := addArticle(t, s, "a1")
	id2 := addArticle(t, s, "a2")

	require.NoError(t, ix.Upsert(ctx, id1, []float32{1, 0, 0}))
	err := ix.Upsert(ctx, id2, []float32{1, 0})
	require.Error(t, err)

	// The failed upsert must not leave a partial vector behind.
	ok, err := ix.Contains(ctx, id2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id := addArticle(t, s, "a1")

	require.NoError(t, ix.Upsert(ctx, id, []float32{1, 0, 0}))
	require.NoError(t, ix.Remove(ctx, id))

	matches, err := ix.Query(ctx, []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Removing an absent vector is not an error.
	require.NoError(t, ix.Remove(ctx, id))
}

func TestQueryEmptyIndex(t *testing.T) {
	ix, _ := testIndex(t)

	matches, err := ix.Query(context.Background(), []float32{1, 0, 0}, 5, 0.3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestQueryOrderingAndFiltering(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()

	// Three vectors at decreasing similarity to the query (1,0,0).
	near := addArticle(t, s, "near")
	mid := addArticle(t, s, "mid")
	far := addArticle(t, s, "far")
	require.NoError(t, ix.Upsert(ctx, near, []float32{1, 0.1, 0}))
	require.NoError(t, ix.Upsert(ctx, mid, []float32{1, 1, 0}))
	require.NoError(t, ix.Upsert(ctx, far, []float32{0, 0, 1}))

	matches, err := ix.Query(ctx, []float32{1, 0, 0}, 10, 0.3)
	require.NoError(t, err)
	require.Len(t, matches, 2, "orthogonal vector filtered by min similarity")
	assert.Equal(t, near, matches[0].ArticleID)
	assert.Equal(t, mid, matches[1].ArticleID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)

	top1, err := ix.Query(ctx, []float32{1, 0, 0}, 1, 0.3)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, near, top1[0].ArticleID)
}

func TestQueryTieBreaksByID(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()

	b := addArticle(t, s, "b")
	a := addArticle(t, s, "a")
	// Identical vectors: identical similarity, lower id first.
	require.NoError(t, ix.Upsert(ctx, b, []float32{0, 1, 0}))
	require.NoError(t, ix.Upsert(ctx, a, []float32{0, 1, 0}))

	matches, err := ix.Query(ctx, []float32{0, 1, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, b, matches[0].ArticleID, "lower article id wins the tie")
	assert.Equal(t, a, matches[1].ArticleID)
}

func TestQueryZeroMagnitude(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id := addArticle(t, s, "a1")
	require.NoError(t, ix.Upsert(ctx, id, []float32{1, 0, 0}))

	matches, err := ix.Query(ctx, []float32{0, 0, 0}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorRoundTrip(t *testing.T) {
	ix, s := testIndex(t)
	ctx := context.Background()
	id := addArticle(t, s, "a1")

	in := []float32{0.25, -1.5, 3.75, 0}
	require.NoError(t, ix.Upsert(ctx, id, in))

	out, err := ix.Vector(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	missing, err := ix.Vector(ctx, id+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
