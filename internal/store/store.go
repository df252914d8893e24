// Package store defines the table-based data store contract the forum views
// run against. Backends live in the gormstore and boltstore subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrMissingFilter = errors.New("missing filter")
)

// Table names a table in the store.
type Table string

const (
	Posts    Table = "posts"
	Comments Table = "comments"
)

func (t Table) String() string {
	return string(t)
}

// columns is the whitelist of columns per table. Filters, orders and patches
// may only name these.
var columns = map[Table][]string{
	Posts:    {"id", "title", "context", "image_url", "upvotes", "created_at"},
	Comments: {"id", "post_id", "content"},
}

// Columns returns the known columns of t, or nil for an unknown table.
func Columns(t Table) []string {
	return columns[t]
}

// Filter is an equality condition on a single column.
type Filter struct {
	Column string
	Value  any
}

// Eq returns a Filter matching rows where column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Order sorts a selection by one column in one direction.
type Order struct {
	Column     string
	Descending bool
}

// Query holds the optional clauses of a Select.
type Query struct {
	Filters []Filter
	Order   *Order
}

// Patch maps column names to their new values.
type Patch map[string]any

// Store is a generic table query client.
type Store interface {
	// Init prepares tables, indexes or buckets.
	Init(ctx context.Context) error
	// Select loads the rows of table matching q into dest, a pointer to a slice.
	Select(ctx context.Context, table Table, dest any, q Query) error
	// Insert stores row, a pointer to a model, and fills in store-assigned fields.
	Insert(ctx context.Context, table Table, row any) error
	// Update applies patch to every row matching filter.
	Update(ctx context.Context, table Table, patch Patch, filter Filter) error
	// Delete removes every row matching filter.
	Delete(ctx context.Context, table Table, filter Filter) error
	// Close releases the underlying connection or file.
	Close() error
}

// ValidateTable reports ErrUnknownTable for tables without a column whitelist.
func ValidateTable(t Table) error {
	if _, ok := columns[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, t)
	}
	return nil
}

// ValidateColumn reports whether column belongs to table t.
func ValidateColumn(t Table, column string) error {
	if err := ValidateTable(t); err != nil {
		return err
	}
	if !slices.Contains(columns[t], column) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t, column)
	}
	return nil
}

// Validate checks every column named by q against table t.
func (q Query) Validate(t Table) error {
	if err := ValidateTable(t); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if err := ValidateColumn(t, f.Column); err != nil {
			return err
		}
	}
	if q.Order != nil {
		if err := ValidateColumn(t, q.Order.Column); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every column named by p against table t. The id column
// is store-assigned and cannot be patched.
func (p Patch) Validate(t Table) error {
	for column := range p {
		if column == "id" {
			return fmt.Errorf("%w: %s.id is immutable", ErrUnknownColumn, t)
		}
		if err := ValidateColumn(t, column); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the filter column. Update and Delete refuse to run
// without a filter.
func (f Filter) Validate(t Table) error {
	if f.Column == "" {
		return ErrMissingFilter
	}
	return ValidateColumn(t, f.Column)
}
