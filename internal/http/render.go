package http

import (
	"embed"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sujalbistaa/openforum/internal/forum"
	"github.com/sujalbistaa/openforum/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"since": humanize.Time,
	"stamp": func(t time.Time) string { return t.Local().Format("Jan 2, 2006 3:04 PM") },
	"lower": strings.ToLower,
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

type sortOption struct {
	Label  string
	URL    string
	Active bool
}

type listPage struct {
	Flash       *Flash
	Posts       []models.Post
	Query       string
	Sort        forum.SortKey
	SortOptions []sortOption
}

func newListPage(v *forum.ListView, flash *Flash) listPage {
	var opts []sortOption
	for _, key := range []forum.SortKey{forum.SortNewest, forum.SortPopular} {
		q := url.Values{"sort": {string(key)}}
		if v.Query() != "" {
			q.Set("q", v.Query())
		}
		opts = append(opts, sortOption{
			Label:  key.Label(),
			URL:    "/?" + q.Encode(),
			Active: key == v.Sort(),
		})
	}
	return listPage{
		Flash:       flash,
		Posts:       v.Posts(),
		Query:       v.Query(),
		Sort:        v.Sort(),
		SortOptions: opts,
	}
}

type createPage struct {
	Flash *Flash
	Form  forum.Form
}

type postPage struct {
	Flash        *Flash
	Failed       bool
	Post         *models.Post
	Comments     []models.Comment
	Editing      bool
	EditBuffer   string
	CommentInput string
}

func newPostPage(v *forum.DetailView, flash *Flash) postPage {
	return postPage{
		Flash:        flash,
		Failed:       v.State() == forum.Failed,
		Post:         v.Post(),
		Comments:     v.Comments(),
		Editing:      v.Mode() == forum.Editing,
		EditBuffer:   v.EditBuffer,
		CommentInput: v.CommentInput,
	}
}
