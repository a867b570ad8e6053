package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	return sqlite.NewStore(db, sqlite.DefaultCollection)
}

// entry builds a two-dimensional entry pointing along (x, y).
func entry(id, docID, content string, x, y float32) *aptnotice.IndexEntry {
	return &aptnotice.IndexEntry{
		ID: id,
		Chunk: &aptnotice.Chunk{
			ID:       id,
			Content:  content,
			Metadata: aptnotice.ChunkMetadata{Header1: "공급개요", DocID: docID},
		},
		Embedding: []float32{x, y},
	}
}

func TestStore_Put(t *testing.T) {
	t.Parallel()

	t.Run("stores entries and reports the document", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)

		err := store.Put(ctx, []*aptnotice.IndexEntry{
			entry("a", "notice-1", "첫째", 1, 0),
			entry("b", "notice-1", "둘째", 0, 1),
		})
		require.NoError(t, err)

		has, err := store.HasDocument(ctx, "notice-1")
		require.NoError(t, err)
		assert.True(t, has)

		has, err = store.HasDocument(ctx, "notice-2")
		require.NoError(t, err)
		assert.False(t, has)

		dim, err := store.Dimension(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, dim)
	})

	t.Run("upserts entries with the same id", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "old", 1, 0)}))
		require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "new", 1, 0)}))

		n, err := store.Count(ctx, aptnotice.SearchFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		results, err := store.Query(ctx, []float32{1, 0}, 1, aptnotice.SearchFilter{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "new", results[0].Chunk.Content)
	})

	t.Run("rejects embeddings of a different dimension", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "x", 1, 0)}))

		wide := entry("b", "notice-2", "y", 1, 0)
		wide.Embedding = []float32{1, 0, 0}
		err := store.Put(ctx, []*aptnotice.IndexEntry{wide})

		require.Error(t, err)
		assert.Equal(t, aptnotice.ECONFLICT, aptnotice.ErrorCode(err))
		assert.True(t, aptnotice.IsDimensionMismatch(err))
		assert.Equal(t, "collection expecting embedding with dimension of 2, got 3", aptnotice.ErrorMessage(err))

		has, err := store.HasDocument(ctx, "notice-2")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("rolls back a batch with a mismatched entry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)

		bad := entry("b", "notice-1", "y", 1, 0)
		bad.Embedding = []float32{1}
		err := store.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "x", 1, 0), bad})
		require.Error(t, err)

		n, err := store.Count(ctx, aptnotice.SearchFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)

		dim, err := store.Dimension(ctx)
		require.NoError(t, err)
		assert.Zero(t, dim)
	})

	t.Run("rejects entries without doc_id", func(t *testing.T) {
		t.Parallel()

		err := newStore(t).Put(context.Background(), []*aptnotice.IndexEntry{entry("a", "", "x", 1, 0)})

		require.Error(t, err)
		assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
	})

	t.Run("accepts an empty batch", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, newStore(t).Put(context.Background(), nil))
	})
}

func TestStore_Query(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *sqlite.Store {
		t.Helper()
		store := newStore(t)
		require.NoError(t, store.Put(context.Background(), []*aptnotice.IndexEntry{
			entry("a", "notice-1", "동쪽", 1, 0),
			entry("b", "notice-1", "북동쪽", 1, 1),
			entry("c", "notice-2", "북쪽", 0, 1),
		}))
		return store
	}

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		t.Parallel()

		results, err := seed(t).Query(context.Background(), []float32{1, 0}, 3, aptnotice.SearchFilter{})

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "동쪽", results[0].Chunk.Content)
		assert.Equal(t, "북동쪽", results[1].Chunk.Content)
		assert.Equal(t, "북쪽", results[2].Chunk.Content)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.InDelta(t, 0.0, results[2].Score, 1e-6)
	})

	t.Run("limits results to k", func(t *testing.T) {
		t.Parallel()

		results, err := seed(t).Query(context.Background(), []float32{0, 1}, 1, aptnotice.SearchFilter{})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "북쪽", results[0].Chunk.Content)
	})

	t.Run("filters by doc_id", func(t *testing.T) {
		t.Parallel()

		results, err := seed(t).Query(context.Background(), []float32{0, 1}, 3,
			aptnotice.SearchFilter{DocID: aptnotice.StringPtr("notice-1")})

		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "notice-1", r.Chunk.Metadata.DocID)
		}
	})

	t.Run("restores chunk metadata", func(t *testing.T) {
		t.Parallel()

		results, err := seed(t).Query(context.Background(), []float32{1, 0}, 1, aptnotice.SearchFilter{})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].Chunk.ID)
		assert.Equal(t, aptnotice.ChunkMetadata{Header1: "공급개요", DocID: "notice-1"}, results[0].Chunk.Metadata)
	})

	t.Run("returns nothing for an empty collection", func(t *testing.T) {
		t.Parallel()

		results, err := newStore(t).Query(context.Background(), []float32{1, 0}, 3, aptnotice.SearchFilter{})

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("returns nothing for an unknown doc_id", func(t *testing.T) {
		t.Parallel()

		results, err := seed(t).Query(context.Background(), []float32{1, 0}, 3,
			aptnotice.SearchFilter{DocID: aptnotice.StringPtr("missing")})

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects a query vector of the wrong dimension", func(t *testing.T) {
		t.Parallel()

		_, err := seed(t).Query(context.Background(), []float32{1, 0, 0}, 3, aptnotice.SearchFilter{})

		require.Error(t, err)
		assert.True(t, aptnotice.IsDimensionMismatch(err))
	})
}

func TestStore_Count(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{
		entry("a", "notice-1", "x", 1, 0),
		entry("b", "notice-1", "y", 0, 1),
		entry("c", "notice-2", "z", 1, 1),
	}))

	total, err := store.Count(ctx, aptnotice.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	n, err := store.Count(ctx, aptnotice.SearchFilter{DocID: aptnotice.StringPtr("notice-2")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()

	t.Run("removes entries and accepts a new dimension", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "x", 1, 0)}))

		require.NoError(t, store.Reset(ctx))

		n, err := store.Count(ctx, aptnotice.SearchFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)

		wide := entry("b", "notice-1", "y", 0, 0)
		wide.Embedding = []float32{0, 0, 1}
		require.NoError(t, store.Put(ctx, []*aptnotice.IndexEntry{wide}))

		dim, err := store.Dimension(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, dim)
	})

	t.Run("leaves other collections untouched", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		defer db.Close()

		notices := sqlite.NewStore(db, sqlite.DefaultCollection)
		other := sqlite.NewStore(db, "other")
		require.NoError(t, notices.Put(ctx, []*aptnotice.IndexEntry{entry("a", "notice-1", "x", 1, 0)}))
		require.NoError(t, other.Put(ctx, []*aptnotice.IndexEntry{entry("b", "notice-1", "y", 1, 0)}))

		require.NoError(t, notices.Reset(ctx))

		n, err := other.Count(ctx, aptnotice.SearchFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
