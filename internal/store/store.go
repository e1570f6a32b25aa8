// Package store persists acquisition history to a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Acquisition is one recorded transcript request outcome.
type Acquisition struct {
	ID        int64  `json:"id"`
	VideoID   string `json:"video_id"`
	Path      string `json:"path,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Chars     int    `json:"chars"`
	CreatedAt string `json:"created_at"`
}

// Store wraps the history database. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS acquisitions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		path       TEXT,
		reason     TEXT,
		chars      INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record saves one acquisition outcome. Best-effort: failures are logged,
// never propagated to the request path.
func (s *Store) Record(ctx context.Context, videoID, path, reason string, chars int) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO acquisitions (video_id, path, reason, chars, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		videoID, path, reason, chars, now,
	)
	if err != nil {
		slog.Warn("store: record failed", slog.Any("error", err))
	}
}

// Recent returns the most recent acquisitions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Acquisition, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, path, reason, chars, created_at
		 FROM acquisitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		var a Acquisition
		var path, reason sql.NullString
		if err := rows.Scan(&a.ID, &a.VideoID, &path, &reason, &a.Chars, &a.CreatedAt); err != nil {
			continue
		}
		a.Path = path.String
		a.Reason = reason.String
		out = append(out, a)
	}
	if out == nil {
		out = []Acquisition{}
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
