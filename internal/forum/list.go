package forum

import (
	"context"
	"log"
	"strings"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

// SortKey is the column the post list is ordered by.
type SortKey string

const (
	SortNewest  SortKey = "created_at"
	SortPopular SortKey = "upvotes"
)

// ParseSortKey maps a request parameter to a SortKey, defaulting to newest.
func ParseSortKey(s string) SortKey {
	if SortKey(s) == SortPopular {
		return SortPopular
	}
	return SortNewest
}

// Order returns the store ordering for k. Both keys sort descending:
// newest first, most upvoted first.
func (k SortKey) Order() *store.Order {
	return &store.Order{Column: string(k), Descending: true}
}

func (k SortKey) Label() string {
	if k == SortPopular {
		return "Most Popular"
	}
	return "Newest"
}

// ListView is the post list with its search query and sort key.
type ListView struct {
	store store.Store
	sort  SortKey
	query string
	state LoadState
	posts []models.Post
	err   error
}

func NewListView(s store.Store) *ListView {
	return &ListView{store: s, sort: SortNewest}
}

// Load fetches every post in the active order. On failure the previously
// fetched posts are kept.
func (v *ListView) Load(ctx context.Context) error {
	v.state = Loading

	var posts []models.Post
	if err := v.store.Select(ctx, store.Posts, &posts, store.Query{Order: v.sort.Order()}); err != nil {
		log.Printf("Error fetching posts: %v", err)
		v.state = Failed
		v.err = err
		return err
	}

	v.posts = posts
	v.state = Loaded
	v.err = nil
	return nil
}

// SetSort changes the sort key and refetches. Nothing is fetched when the
// key is unchanged and a load already ran.
func (v *ListView) SetSort(ctx context.Context, key SortKey) error {
	if key == v.sort && v.state != Idle {
		return nil
	}
	v.sort = key
	return v.Load(ctx)
}

// SetQuery sets the title search. Filtering never touches the store.
func (v *ListView) SetQuery(q string) {
	v.query = q
}

// Posts returns the fetched posts whose title matches the query.
func (v *ListView) Posts() []models.Post {
	return FilterPosts(v.posts, v.query)
}

// Empty reports whether the filtered list has nothing to show.
func (v *ListView) Empty() bool {
	return len(v.Posts()) == 0
}

func (v *ListView) Sort() SortKey    { return v.sort }
func (v *ListView) Query() string    { return v.query }
func (v *ListView) State() LoadState { return v.state }
func (v *ListView) Err() error       { return v.err }

// FilterPosts keeps the posts whose title contains query, case-insensitively,
// in their original order.
func FilterPosts(posts []models.Post, query string) []models.Post {
	needle := strings.ToLower(query)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
