package forum_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/openforum/internal/forum"
	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

func TestFilterPosts(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Title: "ABC news"},
		{ID: 2, Title: "unrelated"},
		{ID: 3, Title: "learn your abcs"},
		{ID: 4, Title: "xAbCx"},
	}

	cases := []struct {
		name  string
		query string
		want  []uint
	}{
		{name: "Empty query keeps everything", query: "", want: []uint{1, 2, 3, 4}},
		{name: "Case-insensitive substring", query: "abc", want: []uint{1, 3, 4}},
		{name: "Upper-case query", query: "ABC", want: []uint{1, 3, 4}},
		{name: "No match", query: "zzz", want: []uint{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := forum.FilterPosts(posts, tc.query)
			ids := make([]uint, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, forum.SortPopular, forum.ParseSortKey("upvotes"))
	assert.Equal(t, forum.SortNewest, forum.ParseSortKey("created_at"))
	assert.Equal(t, forum.SortNewest, forum.ParseSortKey("title"))
	assert.Equal(t, forum.SortNewest, forum.ParseSortKey(""))
	assert.True(t, forum.SortPopular.Order().Descending)
	assert.Equal(t, "Most Popular", forum.SortPopular.Label())
}

func TestListViewLoadAndSort(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, r, models.Post{Title: "older popular", Upvotes: 7, CreatedAt: base}, 0)
	seedPost(t, r, models.Post{Title: "newer quiet", Upvotes: 1, CreatedAt: base.Add(time.Hour)}, 0)

	v := forum.NewListView(r)
	assert.Equal(t, forum.Idle, v.State())

	// The first SetSort with the default key still loads once.
	require.NoError(t, v.SetSort(ctx, forum.SortNewest))
	assert.Equal(t, forum.Loaded, v.State())
	assert.Equal(t, "newer quiet", v.Posts()[0].Title)
	assert.Equal(t, 1, r.count("select posts"))

	require.NoError(t, v.SetSort(ctx, forum.SortNewest))
	assert.Equal(t, 1, r.count("select posts"), "unchanged key must not refetch")

	require.NoError(t, v.SetSort(ctx, forum.SortPopular))
	assert.Equal(t, 2, r.count("select posts"))
	assert.Equal(t, "older popular", v.Posts()[0].Title)

	// Filtering never hits the store.
	v.SetQuery("QUIET")
	require.Len(t, v.Posts(), 1)
	assert.Equal(t, "newer quiet", v.Posts()[0].Title)
	v.SetQuery("nothing like this")
	assert.True(t, v.Empty())
	assert.Equal(t, 2, r.count("select posts"))
	assert.Empty(t, r.calls[2:])
}

func TestListViewFailedFetchKeepsPosts(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()
	seedPost(t, r, models.Post{Title: "kept"}, 0)

	v := forum.NewListView(r)
	require.NoError(t, v.Load(ctx))
	require.Len(t, v.Posts(), 1)

	r.fail["select posts"] = errStoreDown
	err := v.SetSort(ctx, forum.SortPopular)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, forum.Failed, v.State())
	assert.ErrorIs(t, v.Err(), errStoreDown)
	require.Len(t, v.Posts(), 1)
	assert.Equal(t, "kept", v.Posts()[0].Title)
	assert.Equal(t, 2, r.count("select posts"), "no retry after a failure")
}

func TestListViewEmptyStore(t *testing.T) {
	r := newRecorder(t)
	v := forum.NewListView(r)
	require.NoError(t, v.Load(context.Background()))
	assert.True(t, v.Empty())
	assert.Equal(t, []string{"select " + store.Posts.String()}, r.calls)
}
