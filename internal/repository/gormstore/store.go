// Package gormstore is the relational storage adapter. It runs against
// postgres in production and sqlite in tests; postgres-only paths (full-text
// search) degrade to portable SQL on other dialects.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apartrent/apartment-service/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects with the named driver ("postgres" or "sqlite"). The migration
// CLI uses this to address either engine; the server always opens postgres.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown relational driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrBackendUnavailable, err)
	}
	return New(db), nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&locationRow{},
		&apartmentRow{},
		&observationRow{},
	)
}

// EnsureIndexes adds the postgres full-text machinery on top of the schema.
// AutoMigrate already created the regular indexes; other dialects have
// nothing extra to build.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Exec(`ALTER TABLE apartments ADD COLUMN IF NOT EXISTS search_vector tsvector
		GENERATED ALWAYS AS (to_tsvector('english', coalesce(title, '') || ' ' || coalesce(description, ''))) STORED`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_apartments_search_vector
		ON apartments USING GIN (search_vector)`).Error
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver-level failures onto the shared sentinel errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case isDuplicate(err):
		return repository.ErrDuplicateKey
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
