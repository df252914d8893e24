// Package forum holds the views of the forum: the post list, the creation
// form and the post detail page. Each view owns its data for one activation
// and talks to a store.Store directly; nothing is shared between views.
package forum

import (
	"errors"
)

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrNotLoaded  = errors.New("post not loaded")
)

// LoadState tracks a view's data-loading task.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of a user action. Message is meant for display and
// may be empty when an action succeeds silently.
type Result struct {
	Err     error
	Message string
}

func (r Result) OK() bool {
	return r.Err == nil
}

func succeeded(msg string) Result {
	return Result{Message: msg}
}

func failed(err error, msg string) Result {
	return Result{Err: err, Message: msg}
}
