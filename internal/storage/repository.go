// Package storage persists the tracker state in SQLite. The state is kept
// as a handful of JSON blobs in a key/value table, one row per key.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tracker/internal/store"
)

const (
	queryLoadState = `SELECT key, value FROM state`

	querySaveState = `
INSERT INTO state (key, value, updated_at)
VALUES (:key, :value, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

type stateRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads every stored key. An empty database yields a fresh snapshot.
func (r *SQLiteRepository) Load(ctx context.Context) (store.Snapshot, error) {
	var rows []stateRow
	if err := r.db.SelectContext(ctx, &rows, queryLoadState); err != nil {
		return store.Snapshot{}, fmt.Errorf("load state: %w", err)
	}

	blobs := make(map[string]string, len(rows))
	for _, row := range rows {
		blobs[row.Key] = row.Value
	}

	snap, err := DecodeSnapshot(blobs)
	if err != nil {
		return store.Snapshot{}, err
	}

	slog.DebugContext(ctx, "State loaded from SQLite",
		"keys", len(rows),
		"expenses", len(snap.Expenses),
		"loans", len(snap.Loans))
	return snap, nil
}

// Save writes every key in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, snap store.Snapshot) error {
	blobs, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range Keys {
		row := stateRow{Key: key, Value: blobs[key]}
		if _, err := tx.NamedExecContext(ctx, querySaveState, row); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}

	slog.DebugContext(ctx, "State saved to SQLite",
		"expenses", len(snap.Expenses),
		"loans", len(snap.Loans))
	return nil
}

// Get returns the raw blob stored under key, or "" when absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var rows []stateRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM state WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Value, nil
}
