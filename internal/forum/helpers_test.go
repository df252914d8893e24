package forum_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/store/boltstore"
)

var errStoreDown = errors.New("store unavailable")

// recorder wraps a real store, records every call as "<op> <table>" and
// fails the calls listed in fail. Detail loads call it from two goroutines.
type recorder struct {
	store.Store
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newRecorder(t *testing.T) *recorder {
	s, err := boltstore.Open(filepath.Join(t.TempDir(), "forum.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return &recorder{Store: s, fail: map[string]error{}}
}

func (r *recorder) do(op string, table store.Table, call func() error) error {
	key := fmt.Sprintf("%s %s", op, table)
	r.mu.Lock()
	r.calls = append(r.calls, key)
	err, ok := r.fail[key]
	r.mu.Unlock()
	if ok {
		return err
	}
	return call()
}

func (r *recorder) Select(ctx context.Context, table store.Table, dest any, q store.Query) error {
	return r.do("select", table, func() error { return r.Store.Select(ctx, table, dest, q) })
}

func (r *recorder) Insert(ctx context.Context, table store.Table, row any) error {
	return r.do("insert", table, func() error { return r.Store.Insert(ctx, table, row) })
}

func (r *recorder) Update(ctx context.Context, table store.Table, patch store.Patch, filter store.Filter) error {
	return r.do("update", table, func() error { return r.Store.Update(ctx, table, patch, filter) })
}

func (r *recorder) Delete(ctx context.Context, table store.Table, filter store.Filter) error {
	return r.do("delete", table, func() error { return r.Store.Delete(ctx, table, filter) })
}

// reset forgets recorded calls and injected failures.
func (r *recorder) reset() {
	r.calls = nil
	r.fail = map[string]error{}
}

func (r *recorder) count(key string) int {
	n := 0
	for _, c := range r.calls {
		if c == key {
			n++
		}
	}
	return n
}

// seedPost inserts a post and n comments on it, bypassing the recorder.
func seedPost(t *testing.T, r *recorder, post models.Post, n int) models.Post {
	ctx := context.Background()
	require.NoError(t, r.Store.Insert(ctx, store.Posts, &post))
	for i := 0; i < n; i++ {
		c := models.Comment{PostID: post.ID, Content: fmt.Sprintf("comment %d", i)}
		require.NoError(t, r.Store.Insert(ctx, store.Comments, &c))
	}
	return post
}

func storedPosts(t *testing.T, r *recorder) []models.Post {
	var posts []models.Post
	require.NoError(t, r.Store.Select(context.Background(), store.Posts, &posts, store.Query{}))
	return posts
}

func storedComments(t *testing.T, r *recorder, postID uint) []models.Comment {
	var comments []models.Comment
	require.NoError(t, r.Store.Select(context.Background(), store.Comments, &comments, store.Query{
		Filters: []store.Filter{store.Eq("post_id", postID)},
	}))
	return comments
}
