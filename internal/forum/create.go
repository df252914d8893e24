package forum

import (
	"context"
	"log"
	"strings"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

// Form holds the fields of the post creation form.
type Form struct {
	Title    string `form:"title" json:"title"`
	Context  string `form:"context" json:"context"`
	ImageURL string `form:"image_url" json:"image_url"`
}

// CreateView is the post creation form.
type CreateView struct {
	store   store.Store
	Form    Form
	Created *models.Post // the post stored by the last successful Submit
}

func NewCreateView(s store.Store) *CreateView {
	return &CreateView{store: s}
}

// Submit validates the form and inserts one post. The form is cleared only
// on success.
func (v *CreateView) Submit(ctx context.Context) Result {
	if strings.TrimSpace(v.Form.Title) == "" {
		return failed(ErrEmptyTitle, "Title cannot be empty!")
	}

	post := &models.Post{
		Title:    v.Form.Title,
		Context:  v.Form.Context,
		ImageURL: v.Form.ImageURL,
	}
	if err := v.store.Insert(ctx, store.Posts, post); err != nil {
		log.Printf("Error creating post: %v", err)
		return failed(err, "Failed to create the post. Please try again.")
	}

	v.Form = Form{}
	v.Created = post
	return succeeded("Post created successfully!")
}
