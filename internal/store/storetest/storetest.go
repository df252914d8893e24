// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

// Run exercises a freshly initialized store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Insert assigns id, timestamp and upvotes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		post := &models.Post{Title: "Hello", Context: "body", ImageURL: "https://example.com/a.png"}
		require.NoError(t, s.Insert(ctx, store.Posts, post))
		assert.NotZero(t, post.ID)
		assert.False(t, post.CreatedAt.IsZero())
		assert.Equal(t, 0, post.Upvotes)

		var got []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &got, store.Query{Filters: []store.Filter{store.Eq("id", post.ID)}}))
		require.Len(t, got, 1)
		assert.Equal(t, "Hello", got[0].Title)
		assert.Equal(t, "body", got[0].Context)
		assert.Equal(t, "https://example.com/a.png", got[0].ImageURL)
	})

	t.Run("Select orders by one column", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		seed := []models.Post{
			{Title: "old", Upvotes: 5, CreatedAt: base},
			{Title: "new", Upvotes: 1, CreatedAt: base.Add(2 * time.Hour)},
			{Title: "mid", Upvotes: 9, CreatedAt: base.Add(time.Hour)},
		}
		for i := range seed {
			require.NoError(t, s.Insert(ctx, store.Posts, &seed[i]))
		}

		var newest []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &newest, store.Query{Order: &store.Order{Column: "created_at", Descending: true}}))
		assert.Equal(t, []string{"new", "mid", "old"}, titles(newest))

		var popular []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &popular, store.Query{Order: &store.Order{Column: "upvotes", Descending: true}}))
		assert.Equal(t, []string{"mid", "old", "new"}, titles(popular))

		var ascending []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &ascending, store.Query{Order: &store.Order{Column: "upvotes"}}))
		assert.Equal(t, []string{"new", "old", "mid"}, titles(ascending))
	})

	t.Run("Update patches matching rows only", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := &models.Post{Title: "first", Context: "hello"}
		second := &models.Post{Title: "second", Context: "untouched"}
		require.NoError(t, s.Insert(ctx, store.Posts, first))
		require.NoError(t, s.Insert(ctx, store.Posts, second))

		require.NoError(t, s.Update(ctx, store.Posts, store.Patch{"context": "world", "upvotes": 3}, store.Eq("id", first.ID)))

		var got []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &got, store.Query{Order: &store.Order{Column: "id"}}))
		require.Len(t, got, 2)
		assert.Equal(t, "world", got[0].Context)
		assert.Equal(t, 3, got[0].Upvotes)
		assert.Equal(t, "untouched", got[1].Context)
		assert.Equal(t, 0, got[1].Upvotes)
	})

	t.Run("Delete removes matching comments only", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		keep := &models.Post{Title: "keep"}
		drop := &models.Post{Title: "drop"}
		require.NoError(t, s.Insert(ctx, store.Posts, keep))
		require.NoError(t, s.Insert(ctx, store.Posts, drop))
		for _, c := range []models.Comment{
			{PostID: drop.ID, Content: "a"},
			{PostID: keep.ID, Content: "b"},
			{PostID: drop.ID, Content: "c"},
		} {
			require.NoError(t, s.Insert(ctx, store.Comments, &c))
		}

		require.NoError(t, s.Delete(ctx, store.Comments, store.Eq("post_id", drop.ID)))
		require.NoError(t, s.Delete(ctx, store.Posts, store.Eq("id", drop.ID)))

		var dropped []models.Comment
		require.NoError(t, s.Select(ctx, store.Comments, &dropped, store.Query{Filters: []store.Filter{store.Eq("post_id", drop.ID)}}))
		assert.Empty(t, dropped)

		var kept []models.Comment
		require.NoError(t, s.Select(ctx, store.Comments, &kept, store.Query{Filters: []store.Filter{store.Eq("post_id", keep.ID)}}))
		require.Len(t, kept, 1)
		assert.Equal(t, "b", kept[0].Content)

		var posts []models.Post
		require.NoError(t, s.Select(ctx, store.Posts, &posts, store.Query{}))
		assert.Equal(t, []string{"keep"}, titles(posts))
	})

	t.Run("Comments keep insertion order without an explicit order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		post := &models.Post{Title: "thread"}
		require.NoError(t, s.Insert(ctx, store.Posts, post))
		for _, content := range []string{"one", "two", "three"} {
			require.NoError(t, s.Insert(ctx, store.Comments, &models.Comment{PostID: post.ID, Content: content}))
		}

		var got []models.Comment
		require.NoError(t, s.Select(ctx, store.Comments, &got, store.Query{Filters: []store.Filter{store.Eq("post_id", post.ID)}}))
		require.Len(t, got, 3)
		assert.Equal(t, "one", got[0].Content)
		assert.Equal(t, "three", got[2].Content)
	})

	t.Run("Rejects unfiltered writes and unknown columns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		assert.ErrorIs(t, s.Delete(ctx, store.Posts, store.Filter{}), store.ErrMissingFilter)
		assert.ErrorIs(t, s.Update(ctx, store.Posts, store.Patch{"context": "x"}, store.Filter{}), store.ErrMissingFilter)
		assert.ErrorIs(t, s.Update(ctx, store.Posts, store.Patch{"score": 1}, store.Eq("id", 1)), store.ErrUnknownColumn)

		var got []models.Post
		err := s.Select(ctx, store.Posts, &got, store.Query{Order: &store.Order{Column: "score"}})
		assert.ErrorIs(t, err, store.ErrUnknownColumn)
		assert.ErrorIs(t, s.Insert(ctx, store.Table("votes"), &models.Post{Title: "x"}), store.ErrUnknownTable)
	})
}

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}
