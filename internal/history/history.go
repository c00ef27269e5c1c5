// Package history records successful extractions in a local SQLite
// database so they can be re-listed without hitting the upstream again.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tikrip/internal/media"
)

// Entry is one recorded extraction.
type Entry struct {
	PostID      string
	URL         string
	Type        media.PostType
	Author      string
	Description string
	ExtractedAt time.Time
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	post_id      TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	type         TEXT NOT NULL,
	author       TEXT NOT NULL,
	description  TEXT NOT NULL,
	extracted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_time ON extractions(extracted_at DESC);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or refreshes the entry for a post.
func (s *Store) Record(e Entry) error {
	if e.ExtractedAt.IsZero() {
		e.ExtractedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO extractions (post_id, url, type, author, description, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			url = excluded.url,
			type = excluded.type,
			author = excluded.author,
			description = excluded.description,
			extracted_at = excluded.extracted_at`,
		e.PostID, e.URL, string(e.Type), e.Author, e.Description, e.ExtractedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording extraction: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT post_id, url, type, author, description, extracted_at
		FROM extractions
		ORDER BY extracted_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var typ string
		var ts int64
		if err := rows.Scan(&e.PostID, &e.URL, &typ, &e.Author, &e.Description, &ts); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Type = media.PostType(typ)
		e.ExtractedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM extractions`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
