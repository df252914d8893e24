package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/openforum/internal/forum"
	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/ws"
)

// --- Structs for request binding ---
type UpdatePostInput struct {
	Context string `json:"context"`
}
type CommentInput struct {
	Content string `json:"content"`
}

// --- Handlers ---
type Env struct {
	Store store.Store
	Hub   *ws.Hub
}

func (e *Env) GetPosts(c *gin.Context) {
	v := forum.NewListView(e.Store)
	v.SetQuery(c.Query("q"))
	if err := v.SetSort(c.Request.Context(), forum.ParseSortKey(c.Query("sort"))); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": v.Posts()})
}

func (e *Env) CreatePost(c *gin.Context) {
	v := forum.NewCreateView(e.Store)
	if err := c.ShouldBindJSON(&v.Form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	res := v.Submit(c.Request.Context())
	if !res.OK() {
		c.JSON(statusFor(res.Err), gin.H{"error": res.Message})
		return
	}

	e.Hub.Publish(ws.EventPostCreated, v.Created)
	c.JSON(http.StatusCreated, v.Created)
}

func (e *Env) GetPost(c *gin.Context) {
	v, ok := e.loadPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": v.Post(), "comments": commentsOf(v)})
}

func (e *Env) UpvotePost(c *gin.Context) {
	v, ok := e.loadPost(c)
	if !ok {
		return
	}
	res := v.Upvote(c.Request.Context())
	if !res.OK() {
		c.JSON(statusFor(res.Err), gin.H{"error": res.Message})
		return
	}

	e.Hub.Publish(ws.EventPostUpdated, v.Post())
	c.JSON(http.StatusOK, v.Post())
}

func (e *Env) UpdatePost(c *gin.Context) {
	var input UpdatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	v, ok := e.loadPost(c)
	if !ok {
		return
	}

	v.BeginEdit()
	v.EditBuffer = input.Context
	res := v.SaveEdit(c.Request.Context())
	if !res.OK() {
		c.JSON(statusFor(res.Err), gin.H{"error": res.Message})
		return
	}

	e.Hub.Publish(ws.EventPostUpdated, v.Post())
	c.JSON(http.StatusOK, v.Post())
}

func (e *Env) DeletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	v := forum.NewDetailView(e.Store, id)
	res := v.Delete(c.Request.Context())
	if !res.OK() {
		c.JSON(statusFor(res.Err), gin.H{"error": res.Message, "phase": v.Phase().String()})
		return
	}

	e.Hub.Publish(ws.EventPostDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"message": res.Message})
}

func (e *Env) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	v, ok := e.loadPost(c)
	if !ok {
		return
	}

	v.CommentInput = input.Content
	res := v.AddComment(c.Request.Context())
	if !res.OK() {
		c.JSON(statusFor(res.Err), gin.H{"error": res.Message})
		return
	}

	e.Hub.Publish(ws.EventCommentAdded, gin.H{"post_id": v.ID()})
	c.JSON(http.StatusCreated, gin.H{"comments": commentsOf(v)})
}

func (e *Env) loadPost(c *gin.Context) (*forum.DetailView, bool) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return nil, false
	}

	v := forum.NewDetailView(e.Store, id)
	if err := v.Load(c.Request.Context()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		}
		return nil, false
	}
	return v, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// statusFor maps an action error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, forum.ErrEmptyTitle):
		return http.StatusBadRequest
	case errors.Is(err, forum.ErrNotLoaded), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func commentsOf(v *forum.DetailView) []models.Comment {
	if v.Comments() == nil {
		return []models.Comment{}
	}
	return v.Comments()
}
