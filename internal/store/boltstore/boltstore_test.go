package boltstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/store/boltstore"
	"github.com/sujalbistaa/openforum/internal/store/storetest"
)

func newBoltStore(t *testing.T) store.Store {
	s, err := boltstore.Open(filepath.Join(t.TempDir(), "forum.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBoltStore(t *testing.T) {
	storetest.Run(t, newBoltStore)
}

func TestBoltStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.db")
	ctx := context.Background()

	s, err := boltstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	post := &models.Post{Title: "persisted"}
	require.NoError(t, s.Insert(ctx, store.Posts, post))
	require.NoError(t, s.Close())

	s, err = boltstore.Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Init(ctx))

	var got []models.Post
	require.NoError(t, s.Select(ctx, store.Posts, &got, store.Query{Filters: []store.Filter{store.Eq("id", post.ID)}}))
	require.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].Title)
	assert.True(t, got[0].CreatedAt.Equal(post.CreatedAt))

	// Ids keep counting from the stored sequence.
	next := &models.Post{Title: "next"}
	require.NoError(t, s.Insert(ctx, store.Posts, next))
	assert.Greater(t, next.ID, post.ID)
}

func TestBoltStoreCanceledContext(t *testing.T) {
	s := newBoltStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got []models.Post
	assert.ErrorIs(t, s.Select(ctx, store.Posts, &got, store.Query{}), context.Canceled)
	assert.ErrorIs(t, s.Insert(ctx, store.Posts, &models.Post{Title: "x"}), context.Canceled)
}
