// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/medchat-tui/internal/model"
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("storage: database closed")

// DB is the local snapshot database. Snapshots are keyed by backend base
// URL so switching servers never shows another server's conversations.
type DB struct {
	db      *sql.DB
	baseURL string
}

// Open opens (creating if needed) the database at path for the backend at
// baseURL. ":memory:" opens a private in-memory database.
func Open(path, baseURL string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=2000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// migrate brings the schema up to SchemaVersion.
func migrate(db *sql.DB) error {
	version, err := schemaVersion(db)
	if err != nil {
		return err
	}
	for v := version; v > 0 && v < SchemaVersion; v++ {
		if stmt, ok := migrations[v]; ok {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("migrate schema from version %d: %w", v, err)
			}
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// schemaVersion returns the stored schema version, or 0 for a new file.
func schemaVersion(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'metadata'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("read schema: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	version, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q", v)
	}
	return version, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *DB) conn() (*sql.DB, error) {
	if d == nil || d.db == nil {
		return nil, ErrClosed
	}
	return d.db, nil
}

// =============================================================================
// CONVERSATION SNAPSHOT
// =============================================================================

// SaveConversations replaces the stored list with list, keeping its order.
func (d *DB) SaveConversations(ctx context.Context, list []model.Conversation) error {
	db, err := d.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE base_url = ?`, d.baseURL); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO conversations (position, id, title, updated_at, base_url) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for i, c := range list {
		if _, err := stmt.ExecContext(ctx, i, c.ID.String(), c.Title, c.UpdatedAt, d.baseURL); err != nil {
			return fmt.Errorf("store conversation %s: %w", c.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`,
		"snapshot_at:"+d.baseURL, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}
	return tx.Commit()
}

// LoadConversations returns the stored list in its saved order.
func (d *DB) LoadConversations(ctx context.Context) ([]model.Conversation, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, updated_at FROM conversations WHERE base_url = ? ORDER BY position`, d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var list []model.Conversation
	for rows.Next() {
		var c model.Conversation
		var id string
		if err := rows.Scan(&id, &c.Title, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		c.ID = model.ID(id)
		list = append(list, c)
	}
	return list, rows.Err()
}

// SnapshotTime returns when the list was last saved, zero if never.
func (d *DB) SnapshotTime(ctx context.Context) (time.Time, error) {
	db, err := d.conn()
	if err != nil {
		return time.Time{}, err
	}
	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, "snapshot_at:"+d.baseURL).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// ClearConversations drops the stored list for this backend.
func (d *DB) ClearConversations(ctx context.Context) error {
	db, err := d.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM conversations WHERE base_url = ?`, d.baseURL)
	return err
}

// =============================================================================
// COMPOSE HISTORY
// =============================================================================

// AppendHistory records a sent entry and trims the history to limit entries.
// Blank entries and immediate repeats are skipped. limit <= 0 keeps all.
func (d *DB) AppendHistory(ctx context.Context, entry string, limit int) error {
	db, err := d.conn()
	if err != nil {
		return err
	}
	if strings.TrimSpace(entry) == "" {
		return nil
	}

	var last string
	err = db.QueryRowContext(ctx, `SELECT entry FROM history ORDER BY seq DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read history: %w", err)
	}
	if last == entry {
		return nil
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO history (entry, created_at) VALUES (?, ?)`,
		entry, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if limit > 0 {
		if _, err := db.ExecContext(ctx,
			`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`, limit); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	return nil
}

// History returns up to limit most recent entries, oldest first.
func (d *DB) History(ctx context.Context, limit int) ([]string, error) {
	db, err := d.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT entry FROM (SELECT seq, entry FROM history ORDER BY seq DESC LIMIT ?) ORDER BY seq`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
