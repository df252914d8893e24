package forum

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

// Mode is the presentation mode of a loaded post.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

// DeletePhase records how far a post deletion got. Comments go first, then
// the post; the two steps are separate store calls.
type DeletePhase int

const (
	DeleteNone DeletePhase = iota
	CommentsDeleted
	PostDeleted
)

func (p DeletePhase) String() string {
	switch p {
	case DeleteNone:
		return "none"
	case CommentsDeleted:
		return "comments-deleted"
	case PostDeleted:
		return "post-deleted"
	}
	return "unknown"
}

// DetailView is a single post with its comments.
type DetailView struct {
	store    store.Store
	id       uint
	state    LoadState
	mode     Mode
	phase    DeletePhase
	post     *models.Post
	comments []models.Comment
	err      error

	EditBuffer   string
	CommentInput string
}

func NewDetailView(s store.Store, id uint) *DetailView {
	return &DetailView{store: s, id: id}
}

// SetID points the view at another post and reloads. The same id is not
// reloaded once a load has run.
func (v *DetailView) SetID(ctx context.Context, id uint) error {
	if id == v.id && v.state != Idle {
		return nil
	}
	*v = DetailView{store: v.store, id: id}
	return v.Load(ctx)
}

// Load fetches the post and its comments together. The view is Loaded only
// when both succeed.
func (v *DetailView) Load(ctx context.Context) error {
	v.state = Loading

	var (
		post     *models.Post
		comments []models.Comment
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		post, err = v.fetchPost(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = v.fetchComments(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		v.state = Failed
		v.err = err
		return err
	}

	v.post = post
	v.comments = comments
	v.EditBuffer = post.Context
	v.state = Loaded
	v.err = nil
	return nil
}

func (v *DetailView) fetchPost(ctx context.Context) (*models.Post, error) {
	var posts []models.Post
	err := v.store.Select(ctx, store.Posts, &posts, store.Query{
		Filters: []store.Filter{store.Eq("id", v.id)},
	})
	if err != nil {
		log.Printf("Error fetching post %d: %v", v.id, err)
		return nil, err
	}
	if len(posts) != 1 {
		return nil, fmt.Errorf("post %d: %w", v.id, store.ErrNotFound)
	}
	return &posts[0], nil
}

func (v *DetailView) fetchComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := v.store.Select(ctx, store.Comments, &comments, store.Query{
		Filters: []store.Filter{store.Eq("post_id", v.id)},
	})
	if err != nil {
		log.Printf("Error fetching comments for post %d: %v", v.id, err)
		return nil, err
	}
	return comments, nil
}

// refreshPost refetches the post after a write. A failed refetch keeps the
// previous copy.
func (v *DetailView) refreshPost(ctx context.Context) {
	if post, err := v.fetchPost(ctx); err == nil {
		v.post = post
	}
}

func (v *DetailView) refreshComments(ctx context.Context) {
	if comments, err := v.fetchComments(ctx); err == nil {
		v.comments = comments
	}
}

// BeginEdit enters edit mode with the buffer seeded from the current body.
func (v *DetailView) BeginEdit() {
	if v.post == nil {
		return
	}
	v.mode = Editing
	v.EditBuffer = v.post.Context
}

// CancelEdit drops the edit buffer without writing anything.
func (v *DetailView) CancelEdit() {
	v.mode = Viewing
	if v.post != nil {
		v.EditBuffer = v.post.Context
	}
}

// SaveEdit writes the edit buffer to the post body. A failed save stays in
// edit mode with the buffer intact.
func (v *DetailView) SaveEdit(ctx context.Context) Result {
	if v.post == nil {
		return failed(ErrNotLoaded, "Failed to update the post. Check the console for details.")
	}

	err := v.store.Update(ctx, store.Posts, store.Patch{"context": v.EditBuffer}, store.Eq("id", v.id))
	if err != nil {
		log.Printf("Error updating post: %v", err)
		return failed(err, "Failed to update the post. Check the console for details.")
	}

	v.mode = Viewing
	v.refreshPost(ctx)
	v.EditBuffer = v.post.Context
	return succeeded("Post updated successfully!")
}

// Upvote stores the current count plus one, then refetches. The displayed
// count changes only once the refetch returns.
func (v *DetailView) Upvote(ctx context.Context) Result {
	if v.post == nil {
		return failed(ErrNotLoaded, "Failed to upvote the post.")
	}

	err := v.store.Update(ctx, store.Posts, store.Patch{"upvotes": v.post.Upvotes + 1}, store.Eq("id", v.id))
	if err != nil {
		log.Printf("Error upvoting post: %v", err)
		return failed(err, "Failed to upvote the post.")
	}

	v.refreshPost(ctx)
	return succeeded("")
}

// Delete removes the post's comments and then the post. The post delete is
// only issued once the comments are gone; if it fails the phase stays at
// CommentsDeleted.
func (v *DetailView) Delete(ctx context.Context) Result {
	v.phase = DeleteNone

	if err := v.store.Delete(ctx, store.Comments, store.Eq("post_id", v.id)); err != nil {
		log.Printf("Error deleting comments: %v", err)
		return failed(err, "Failed to delete the comments. Check the console for details.")
	}
	v.phase = CommentsDeleted
	v.comments = nil

	if err := v.store.Delete(ctx, store.Posts, store.Eq("id", v.id)); err != nil {
		log.Printf("Error deleting post: %v", err)
		return failed(err, "Failed to delete the post. Check the console for details.")
	}
	v.phase = PostDeleted
	v.post = nil
	return succeeded("Post deleted successfully!")
}

// AddComment stores the comment input on this post, refetches the comments
// and clears the input. Empty input is stored as is.
func (v *DetailView) AddComment(ctx context.Context) Result {
	comment := &models.Comment{PostID: v.id, Content: v.CommentInput}
	if err := v.store.Insert(ctx, store.Comments, comment); err != nil {
		log.Printf("Error adding comment: %v", err)
		return failed(err, "Failed to add the comment.")
	}

	v.refreshComments(ctx)
	v.CommentInput = ""
	return succeeded("")
}

func (v *DetailView) ID() uint                   { return v.id }
func (v *DetailView) State() LoadState           { return v.state }
func (v *DetailView) Mode() Mode                 { return v.mode }
func (v *DetailView) Phase() DeletePhase         { return v.phase }
func (v *DetailView) Post() *models.Post         { return v.post }
func (v *DetailView) Comments() []models.Comment { return v.comments }
func (v *DetailView) Err() error                 { return v.err }
