// Package gormstore implements store.Store on top of gorm, for SQLite and
// PostgreSQL databases.
package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/openforum/internal/models"
	"github.com/sujalbistaa/openforum/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Init runs the migrations for posts and comments.
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Select(ctx context.Context, table store.Table, dest any, q store.Query) error {
	if err := q.Validate(table); err != nil {
		return err
	}

	tx := s.db.WithContext(ctx).Table(table.String())
	for _, f := range q.Filters {
		tx = tx.Where(eq(f))
	}
	if q.Order != nil {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.Order.Column},
			Desc:   q.Order.Descending,
		})
	}

	if err := tx.Find(dest).Error; err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, table store.Table, row any) error {
	if err := checkRow(table, row); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Table(table.String()).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, table store.Table, patch store.Patch, filter store.Filter) error {
	if err := filter.Validate(table); err != nil {
		return err
	}
	if err := patch.Validate(table); err != nil {
		return err
	}
	model, err := modelFor(table)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Model(model).Where(eq(filter)).Updates(map[string]any(patch)).Error
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table store.Table, filter store.Filter) error {
	if err := filter.Validate(table); err != nil {
		return err
	}
	model, err := modelFor(table)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where(eq(filter)).Delete(model).Error; err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func eq(f store.Filter) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value}
}

func modelFor(table store.Table) (any, error) {
	switch table {
	case store.Posts:
		return &models.Post{}, nil
	case store.Comments:
		return &models.Comment{}, nil
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownTable, table)
}

// checkRow refuses rows whose model does not belong to table.
func checkRow(table store.Table, row any) error {
	switch row.(type) {
	case *models.Post:
		if table == store.Posts {
			return nil
		}
	case *models.Comment:
		if table == store.Comments {
			return nil
		}
	default:
		if err := store.ValidateTable(table); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: cannot insert %T into %s", store.ErrUnknownTable, row, table)
}
