// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package sqlite implements state.Store on a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"github.com/mia-platform/stocksync/internal/state"
	"github.com/mia-platform/stocksync/internal/syncerr"
)

const (
	driverName = "sqlite"

	// DefaultPath is the database file used when no path is configured, relative to the
	// working directory of the worker process.
	DefaultPath = "sync-state.db"

	// timeLayout is fixed width in UTC, so text comparison in SQL matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	schema = `
CREATE TABLE IF NOT EXISTS sync_state (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel TEXT NOT NULL UNIQUE,
	last_synced_at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

	upsertWatermark = `
INSERT INTO sync_state (channel, last_synced_at, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(channel) DO UPDATE SET
	last_synced_at = excluded.last_synced_at,
	updated_at = excluded.updated_at
WHERE excluded.last_synced_at > sync_state.last_synced_at`

	selectWatermark = `SELECT channel, last_synced_at, created_at, updated_at FROM sync_state WHERE channel = ?`
	selectAll       = `SELECT channel, last_synced_at, created_at, updated_at FROM sync_state ORDER BY channel`
)

var _ state.Store = &Store{}

// Store is a state.Store persisted in a SQLite database. Each worker is expected to open its
// own file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens, creating it if needed, the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageError("create state directory", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, storageError("open state database", err)
	}
	db.SetMaxOpenConns(1)

	for _, statement := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			db.Close()
			return nil, storageError("initialize state database", err)
		}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close implements state.Store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storageError("close state database", err)
	}
	return nil
}

// Watermark implements state.Store.
func (s *Store) Watermark(ctx context.Context, channel string) (time.Time, bool, error) {
	watermark, err := s.Get(ctx, channel)
	if err != nil || watermark == nil {
		return time.Time{}, false, err
	}

	return watermark.LastSyncedAt, true, nil
}

// RecordWatermark implements state.Store. The compare and write happen in a single statement.
func (s *Store) RecordWatermark(ctx context.Context, channel string, candidates ...time.Time) error {
	latest, err := state.MaxCandidate(candidates)
	if err != nil {
		return err
	}

	now := formatTime(s.now())
	if _, err := s.db.ExecContext(ctx, upsertWatermark, channel, formatTime(latest), now, now); err != nil {
		return storageError("record watermark for "+channel, err)
	}

	return nil
}

// Get implements state.Store.
func (s *Store) Get(ctx context.Context, channel string) (*state.Watermark, error) {
	watermark, err := scanWatermark(s.db.QueryRowContext(ctx, selectWatermark, channel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("read watermark for "+channel, err)
	}

	return watermark, nil
}

// List implements state.Store.
func (s *Store) List(ctx context.Context) ([]state.Watermark, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, storageError("list watermarks", err)
	}
	defer rows.Close()

	watermarks := make([]state.Watermark, 0)
	for rows.Next() {
		watermark, err := scanWatermark(rows)
		if err != nil {
			return nil, storageError("list watermarks", err)
		}
		watermarks = append(watermarks, *watermark)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("list watermarks", err)
	}
	return watermarks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWatermark(row scanner) (*state.Watermark, error) {
	var channel, lastSyncedAt, createdAt, updatedAt string
	if err := row.Scan(&channel, &lastSyncedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	watermark := &state.Watermark{Channel: channel}
	for _, field := range []struct {
		value  string
		target *time.Time
	}{
		{lastSyncedAt, &watermark.LastSyncedAt},
		{createdAt, &watermark.CreatedAt},
		{updatedAt, &watermark.UpdatedAt},
	} {
		parsed, err := time.Parse(timeLayout, field.value)
		if err != nil {
			return nil, fmt.Errorf("corrupted timestamp %q: %w", field.value, err)
		}
		*field.target = parsed
	}

	return watermark, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", syncerr.ErrStorageFailure, operation, err)
}
