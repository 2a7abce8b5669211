// Package storage owns the durable state of the ledger: an embedded SQLite
// database holding the meta, settings, trips and expenses containers, with
// SQL transactions as the atomic-unit primitive for every multi-record
// operation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and hands out record operations either
// directly or grouped into an atomic unit via InTx.
type Store struct {
	db      *sql.DB
	queries *Queries
}

// Open creates the database file (and its directory) if needed, runs the
// schema migrations and returns a ready Store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single logical writer; one connection keeps transactions serialized
	// and avoids SQLITE_BUSY between the pool's connections.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Ledger store opened", "path", dbPath)

	return &Store{db: db, queries: New(db)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Queries returns the auto-committing record operations for single-record
// reads and writes outside any atomic unit.
func (s *Store) Queries() *Queries {
	return s.queries
}

// InTx runs fn as one atomic unit: every record operation issued through
// the passed Queries commits together or not at all. Any error from fn or
// from the commit aborts the unit, leaves the store unchanged and surfaces
// to the caller verbatim. There is no automatic retry.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		// No-op when the transaction already committed.
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
