// Package boltstore implements store.Store in a single bbolt file. Each table
// is a bucket of JSON rows keyed by the big-endian row id.
package boltstore

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/sujalbistaa/openforum/internal/store"
)

var tables = []store.Table{store.Posts, store.Comments}

type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the bbolt file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Init creates one bucket per table.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, t := range tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(t)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", t, err)
			}
		}
		return nil
	})
}

type record struct {
	key    []byte
	raw    []byte
	fields map[string]any
}

func (s *Store) Select(ctx context.Context, table store.Table, dest any, q store.Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := q.Validate(table); err != nil {
		return err
	}

	var matched []record
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		matched, err = scan(tx, table, q.Filters)
		return err
	})
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}

	if o := q.Order; o != nil {
		slices.SortStableFunc(matched, func(a, b record) int {
			c := compareValues(a.fields[o.Column], b.fields[o.Column])
			if o.Descending {
				return -c
			}
			return c
		})
	}

	rows := make([]json.RawMessage, 0, len(matched))
	for _, r := range matched {
		rows = append(rows, r.raw)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("select %s: decode rows: %w", table, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, table store.Table, row any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateTable(table); err != nil {
		return err
	}

	fields, err := toFields(row)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	for column := range fields {
		if store.ValidateColumn(table, column) != nil {
			delete(fields, column)
		}
	}

	var stored []byte
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return fmt.Errorf("bucket %s not found", table)
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		fields["id"] = id
		applyDefaults(table, fields, s.now().UTC())

		stored, err = json.Marshal(fields)
		if err != nil {
			return err
		}
		return b.Put(itob(id), stored)
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	// Hand the assigned id and defaults back to the caller.
	return json.Unmarshal(stored, row)
}

func (s *Store) Update(ctx context.Context, table store.Table, patch store.Patch, filter store.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := filter.Validate(table); err != nil {
		return err
	}
	if err := patch.Validate(table); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		matched, err := scan(tx, table, []store.Filter{filter})
		if err != nil {
			return err
		}
		b := tx.Bucket([]byte(table))
		for _, r := range matched {
			for column, value := range patch {
				r.fields[column] = value
			}
			data, err := json.Marshal(r.fields)
			if err != nil {
				return err
			}
			if err := b.Put(r.key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table store.Table, filter store.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := filter.Validate(table); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		matched, err := scan(tx, table, []store.Filter{filter})
		if err != nil {
			return err
		}
		b := tx.Bucket([]byte(table))
		for _, r := range matched {
			if err := b.Delete(r.key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// scan returns the rows of table matching every filter, in key order. Keys
// and values are copied so callers may write to the bucket afterwards.
func scan(tx *bbolt.Tx, table store.Table, filters []store.Filter) ([]record, error) {
	b := tx.Bucket([]byte(table))
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", table)
	}

	wants := make([]any, len(filters))
	for i, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		wants[i] = v
	}

	var out []record
	err := b.ForEach(func(k, v []byte) error {
		fields, err := decodeFields(v)
		if err != nil {
			return fmt.Errorf("row %d: %w", binary.BigEndian.Uint64(k), err)
		}
		for i, f := range filters {
			if compareValues(fields[f.Column], wants[i]) != 0 {
				return nil
			}
		}
		out = append(out, record{
			key:    bytes.Clone(k),
			raw:    bytes.Clone(v),
			fields: fields,
		})
		return nil
	})
	return out, err
}

func applyDefaults(table store.Table, fields map[string]any, now time.Time) {
	if table != store.Posts {
		return
	}
	if ts, ok := fields["created_at"].(string); !ok || isZeroTime(ts) {
		fields["created_at"] = now
	}
	if _, ok := fields["upvotes"]; !ok {
		fields["upvotes"] = 0
	}
}

func isZeroTime(ts string) bool {
	t, err := time.Parse(time.RFC3339Nano, ts)
	return err != nil || t.IsZero()
}

func toFields(row any) (map[string]any, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	return decodeFields(data)
}

func decodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("row is not an object")
	}
	return fields, nil
}

// normalize passes v through JSON so it compares like a stored value.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// compareValues orders decoded JSON values. Numbers compare numerically and
// RFC 3339 timestamps chronologically; null sorts first.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case json.Number:
		if bv, ok := b.(json.Number); ok {
			af, _ := av.Float64()
			bf, _ := bv.Float64()
			return cmp.Compare(af, bf)
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
