package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"elite-app/internal/repository"
)

// Open opens (or creates) the sqlite database at path. The special path
// ":memory:" skips directory creation.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// Stores bundles the sqlite-backed repositories sharing one handle.
type Stores struct {
	Users      repository.UserRepository
	Activities repository.ActivityRepository
}

// NewStores builds the repositories and creates their tables.
func NewStores(ctx context.Context, db *sql.DB) (*Stores, error) {
	stores := &Stores{
		Users:      NewUserRepository(db),
		Activities: NewActivityRepository(db),
	}
	if err := stores.Users.Init(ctx); err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := stores.Activities.Init(ctx); err != nil {
		return nil, fmt.Errorf("init activity repository: %w", err)
	}
	return stores, nil
}
