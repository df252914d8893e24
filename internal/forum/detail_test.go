package forum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/openforum/internal/forum"
	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

func loadedView(t *testing.T, r *recorder, id uint) *forum.DetailView {
	v := forum.NewDetailView(r, id)
	require.NoError(t, v.Load(context.Background()))
	require.Equal(t, forum.Loaded, v.State())
	r.reset()
	return v
}

func TestDetailViewLoad(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "thread", Context: "body"}, 3)
	seedPost(t, r, models.Post{Title: "other"}, 2)

	v := forum.NewDetailView(r, post.ID)
	assert.Equal(t, forum.Idle, v.State())
	require.NoError(t, v.Load(context.Background()))

	assert.Equal(t, forum.Loaded, v.State())
	assert.Equal(t, forum.Viewing, v.Mode())
	assert.Equal(t, "thread", v.Post().Title)
	assert.Len(t, v.Comments(), 3)
	assert.ElementsMatch(t, []string{"select posts", "select comments"}, r.calls)
}

func TestDetailViewLoadMissingPost(t *testing.T) {
	r := newRecorder(t)
	v := forum.NewDetailView(r, 42)

	err := v.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, forum.Failed, v.State())
	assert.Nil(t, v.Post())
}

func TestDetailViewLoadFailsWhenCommentsFail(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "thread"}, 1)
	r.fail["select comments"] = errStoreDown

	v := forum.NewDetailView(r, post.ID)
	assert.ErrorIs(t, v.Load(context.Background()), errStoreDown)
	assert.Equal(t, forum.Failed, v.State())
}

func TestDetailViewSetID(t *testing.T) {
	r := newRecorder(t)
	first := seedPost(t, r, models.Post{Title: "first"}, 0)
	second := seedPost(t, r, models.Post{Title: "second"}, 1)
	ctx := context.Background()

	v := forum.NewDetailView(r, first.ID)
	require.NoError(t, v.SetID(ctx, first.ID))
	assert.Equal(t, "first", v.Post().Title)
	assert.Len(t, r.calls, 2)

	require.NoError(t, v.SetID(ctx, first.ID))
	assert.Len(t, r.calls, 2, "same id does not reload")

	v.BeginEdit()
	require.NoError(t, v.SetID(ctx, second.ID))
	assert.Len(t, r.calls, 4)
	assert.Equal(t, "second", v.Post().Title)
	assert.Len(t, v.Comments(), 1)
	assert.Equal(t, forum.Viewing, v.Mode(), "a new post starts in viewing mode")
}

func TestDetailViewUpvote(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "vote", Upvotes: 4}, 0)
	v := loadedView(t, r, post.ID)
	ctx := context.Background()

	res := v.Upvote(ctx)
	require.True(t, res.OK())
	assert.Equal(t, []string{"update posts", "select posts"}, r.calls, "upvote refetches instead of incrementing locally")
	assert.Equal(t, 5, v.Post().Upvotes)
	assert.Equal(t, 5, storedPosts(t, r)[0].Upvotes)

	// The shown count is whatever the refetch returns.
	require.NoError(t, r.Store.Update(ctx, store.Posts, store.Patch{"upvotes": 20}, store.Eq("id", post.ID)))
	assert.Equal(t, 5, v.Post().Upvotes)
	require.True(t, v.Upvote(ctx).OK())
	assert.Equal(t, 6, v.Post().Upvotes)
}

func TestDetailViewUpvoteFailure(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "vote", Upvotes: 2}, 0)
	v := loadedView(t, r, post.ID)
	r.fail["update posts"] = errStoreDown

	res := v.Upvote(context.Background())
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Equal(t, "Failed to upvote the post.", res.Message)
	assert.Equal(t, 2, v.Post().Upvotes)
	assert.Equal(t, 2, storedPosts(t, r)[0].Upvotes)
}

func TestDetailViewEditRoundTrip(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()

	create := forum.NewCreateView(r)
	create.Form = forum.Form{Title: "round trip", Context: "hello"}
	require.True(t, create.Submit(ctx).OK())

	v := loadedView(t, r, create.Created.ID)
	v.BeginEdit()
	assert.Equal(t, forum.Editing, v.Mode())
	assert.Equal(t, "hello", v.EditBuffer)

	v.EditBuffer = "world"
	res := v.SaveEdit(ctx)
	require.True(t, res.OK())
	assert.Equal(t, "Post updated successfully!", res.Message)
	assert.Equal(t, forum.Viewing, v.Mode())
	assert.Equal(t, []string{"update posts", "select posts"}, r.calls)

	fresh := loadedView(t, r, create.Created.ID)
	assert.Equal(t, "world", fresh.Post().Context)
}

func TestDetailViewCancelEdit(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "cancel", Context: "original"}, 0)
	v := loadedView(t, r, post.ID)

	v.BeginEdit()
	v.EditBuffer = "discard-me"
	v.CancelEdit()

	assert.Equal(t, forum.Viewing, v.Mode())
	assert.Equal(t, "original", v.EditBuffer)
	assert.Empty(t, r.calls)
	assert.Equal(t, "original", storedPosts(t, r)[0].Context)
}

func TestDetailViewSaveEditFailureStaysEditing(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "edit", Context: "before"}, 0)
	v := loadedView(t, r, post.ID)
	r.fail["update posts"] = errStoreDown

	v.BeginEdit()
	v.EditBuffer = "after"
	res := v.SaveEdit(context.Background())

	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Equal(t, "Failed to update the post. Check the console for details.", res.Message)
	assert.Equal(t, forum.Editing, v.Mode())
	assert.Equal(t, "after", v.EditBuffer)
	assert.Equal(t, "before", v.Post().Context)
}

func TestDetailViewDelete(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "doomed"}, 3)
	other := seedPost(t, r, models.Post{Title: "survivor"}, 2)
	v := loadedView(t, r, post.ID)

	res := v.Delete(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, "Post deleted successfully!", res.Message)
	assert.Equal(t, forum.PostDeleted, v.Phase())
	assert.Equal(t, []string{"delete comments", "delete posts"}, r.calls)

	assert.Empty(t, storedComments(t, r, post.ID))
	posts := storedPosts(t, r)
	require.Len(t, posts, 1)
	assert.Equal(t, other.ID, posts[0].ID)
	assert.Len(t, storedComments(t, r, other.ID), 2)
}

func TestDetailViewDeleteCommentsFailure(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "sticky"}, 3)
	v := loadedView(t, r, post.ID)
	r.fail["delete comments"] = errStoreDown

	res := v.Delete(context.Background())
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Equal(t, "Failed to delete the comments. Check the console for details.", res.Message)
	assert.Equal(t, forum.DeleteNone, v.Phase())
	assert.Equal(t, []string{"delete comments"}, r.calls, "post delete is never issued")

	assert.Len(t, storedPosts(t, r), 1)
	assert.Len(t, storedComments(t, r, post.ID), 3)
}

func TestDetailViewDeletePostFailureLeavesPartialState(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "half gone"}, 2)
	v := loadedView(t, r, post.ID)
	r.fail["delete posts"] = errStoreDown

	res := v.Delete(context.Background())
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Equal(t, "Failed to delete the post. Check the console for details.", res.Message)
	assert.Equal(t, forum.CommentsDeleted, v.Phase())

	assert.Len(t, storedPosts(t, r), 1)
	assert.Empty(t, storedComments(t, r, post.ID))
}

func TestDetailViewAddComment(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "chatty"}, 1)
	v := loadedView(t, r, post.ID)
	ctx := context.Background()

	v.CommentInput = "first reply"
	res := v.AddComment(ctx)
	require.True(t, res.OK())
	assert.Equal(t, "", v.CommentInput)
	assert.Equal(t, []string{"insert comments", "select comments"}, r.calls)
	require.Len(t, v.Comments(), 2)
	assert.Equal(t, "first reply", v.Comments()[1].Content)

	// Empty comments go through to the store.
	require.True(t, v.AddComment(ctx).OK())
	assert.Len(t, v.Comments(), 3)
	assert.Equal(t, "", v.Comments()[2].Content)
}

func TestDetailViewAddCommentFailure(t *testing.T) {
	r := newRecorder(t)
	post := seedPost(t, r, models.Post{Title: "quiet"}, 0)
	v := loadedView(t, r, post.ID)
	r.fail["insert comments"] = errStoreDown

	v.CommentInput = "lost?"
	res := v.AddComment(context.Background())
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Equal(t, "Failed to add the comment.", res.Message)
	assert.Equal(t, "lost?", v.CommentInput)
	assert.Empty(t, v.Comments())
}

func TestDetailViewActionsNeedLoadedPost(t *testing.T) {
	r := newRecorder(t)
	v := forum.NewDetailView(r, 1)
	ctx := context.Background()

	assert.ErrorIs(t, v.Upvote(ctx).Err, forum.ErrNotLoaded)
	assert.ErrorIs(t, v.SaveEdit(ctx).Err, forum.ErrNotLoaded)
	v.BeginEdit()
	assert.Equal(t, forum.Viewing, v.Mode())
	assert.Empty(t, r.calls)
}
