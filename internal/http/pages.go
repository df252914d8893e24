package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/openforum/internal/forum"
	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/ws"
)

// ListPage renders the post list. A failed fetch is logged by the view and
// the page shows whatever was loaded.
func (e *Env) ListPage(c *gin.Context) {
	v := forum.NewListView(e.Store)
	v.SetQuery(c.Query("q"))
	_ = v.SetSort(c.Request.Context(), forum.ParseSortKey(c.Query("sort")))
	c.HTML(http.StatusOK, "list.html", newListPage(v, popFlash(c)))
}

func (e *Env) CreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "create.html", createPage{Flash: popFlash(c)})
}

// SubmitPost handles the creation form. On failure the form is rendered
// again with the submitted values.
func (e *Env) SubmitPost(c *gin.Context) {
	v := forum.NewCreateView(e.Store)
	if err := c.ShouldBind(&v.Form); err != nil {
		c.HTML(http.StatusBadRequest, "create.html", createPage{
			Flash: &Flash{Message: "Invalid input: " + err.Error(), Error: true},
			Form:  v.Form,
		})
		return
	}

	res := v.Submit(c.Request.Context())
	if !res.OK() {
		c.HTML(statusFor(res.Err), "create.html", createPage{Flash: flashFrom(res), Form: v.Form})
		return
	}

	e.Hub.Publish(ws.EventPostCreated, v.Created)
	setFlash(c, res)
	c.Redirect(http.StatusSeeOther, "/create")
}

func (e *Env) PostPage(c *gin.Context) {
	v, ok := e.loadPostPage(c)
	if !ok {
		return
	}
	if c.Query("edit") == "1" {
		v.BeginEdit()
	}
	c.HTML(http.StatusOK, "post.html", newPostPage(v, popFlash(c)))
}

func (e *Env) UpvotePage(c *gin.Context) {
	v, ok := e.loadPostPage(c)
	if !ok {
		return
	}
	res := v.Upvote(c.Request.Context())
	if res.OK() {
		e.Hub.Publish(ws.EventPostUpdated, v.Post())
	}
	setFlash(c, res)
	c.Redirect(http.StatusSeeOther, postURL(v.ID()))
}

// SaveEditPage saves the edited body. A failed save renders the page again
// in edit mode with the submitted text.
func (e *Env) SaveEditPage(c *gin.Context) {
	v, ok := e.loadPostPage(c)
	if !ok {
		return
	}
	v.BeginEdit()
	v.EditBuffer = c.PostForm("context")

	res := v.SaveEdit(c.Request.Context())
	if !res.OK() {
		c.HTML(statusFor(res.Err), "post.html", newPostPage(v, flashFrom(res)))
		return
	}

	e.Hub.Publish(ws.EventPostUpdated, v.Post())
	setFlash(c, res)
	c.Redirect(http.StatusSeeOther, postURL(v.ID()))
}

// DeletePage deletes the post and its comments and returns to the list.
func (e *Env) DeletePage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "notfound.html", gin.H{})
		return
	}

	v := forum.NewDetailView(e.Store, id)
	res := v.Delete(c.Request.Context())
	setFlash(c, res)
	if !res.OK() {
		c.Redirect(http.StatusSeeOther, postURL(id))
		return
	}

	e.Hub.Publish(ws.EventPostDeleted, gin.H{"id": id})
	c.Redirect(http.StatusSeeOther, "/")
}

// AddCommentPage stores a comment. On failure the typed text is kept.
func (e *Env) AddCommentPage(c *gin.Context) {
	v, ok := e.loadPostPage(c)
	if !ok {
		return
	}
	v.CommentInput = c.PostForm("content")

	res := v.AddComment(c.Request.Context())
	if !res.OK() {
		c.HTML(statusFor(res.Err), "post.html", newPostPage(v, flashFrom(res)))
		return
	}

	e.Hub.Publish(ws.EventCommentAdded, gin.H{"post_id": v.ID()})
	c.Redirect(http.StatusSeeOther, postURL(v.ID())+"#comments")
}

// loadPostPage loads the post named by the route and renders the error page
// itself when that fails.
func (e *Env) loadPostPage(c *gin.Context) (*forum.DetailView, bool) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "notfound.html", gin.H{})
		return nil, false
	}

	v := forum.NewDetailView(e.Store, id)
	if err := v.Load(c.Request.Context()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.HTML(http.StatusNotFound, "notfound.html", gin.H{})
		} else {
			c.HTML(http.StatusInternalServerError, "post.html", newPostPage(v, nil))
		}
		return nil, false
	}
	return v, true
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}
