package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/store/boltstore"
	"github.com/sujalbistaa/openforum/internal/store/gormstore"
)

// DefaultURL is used when no database URL is configured.
const DefaultURL = "sqlite://openforum.db"

var ErrInvalidURL = errors.New("invalid database URL")

// ValidateURL reports whether dbURL names a supported backend.
func ValidateURL(dbURL string) error {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
	case strings.HasPrefix(dbURL, "sqlite://"), strings.HasPrefix(dbURL, "bolt://"):
	default:
		return fmt.Errorf("%w: must start with 'postgres://', 'sqlite://' or 'bolt://'", ErrInvalidURL)
	}
	return nil
}

// Open returns the store named by dbURL. The store is not initialized;
// call Init before use.
func Open(dbURL string) (store.Store, error) {
	if dbURL == "" {
		dbURL = DefaultURL
		log.Printf("DATABASE_URL not set, defaulting to '%s'", DefaultURL)
	}
	if err := ValidateURL(dbURL); err != nil {
		return nil, err
	}

	if path, ok := strings.CutPrefix(dbURL, "bolt://"); ok {
		log.Println("Opening bolt database at", path)
		s, err := boltstore.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	var dialector gorm.Dialector
	if dsn, ok := strings.CutPrefix(dbURL, "sqlite://"); ok {
		dialector = sqlite.Open(dsn)
		log.Println("Connecting to SQLite database at", dsn)
	} else {
		// pgx understands the full URL form
		dialector = postgres.Open(dbURL)
		log.Println("Connecting to PostgreSQL database...")
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Be quiet by default
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Database connection established.")
	return gormstore.New(gdb), nil
}
