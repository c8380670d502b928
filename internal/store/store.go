// Package store is C7: the relational store backing cards, embeddings,
// the graph, and sync bookkeeping. Uses modernc.org/sqlite (pure Go, no
// cgo); since that driver carries no vec0 extension, vector search is a
// brute-force cosine scan over BLOB-serialized float32 (see vector.go).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database for all codeprism persistence.
type Store struct {
	db  *sql.DB
	dim int
}

// Open creates (or reopens) a SQLite database at path, applies WAL-mode
// pragmas, creates the base schema, and runs pending migrations. dim is
// the embedding vector width enforced on writes.
func Open(path string, dim int) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(30000)")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging store: %w", err)
	}

	// SQLite serializes writers regardless of pool size; a single
	// connection avoids SQLITE_BUSY churn under WAL.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db, dim: dim}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for call sites that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dim returns the configured embedding dimension.
func (s *Store) Dim() int {
	return s.dim
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns (including a panic-free early return).
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
