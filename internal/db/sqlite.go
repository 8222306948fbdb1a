package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS publishes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			space TEXT NOT NULL,
			title TEXT NOT NULL,
			page_id TEXT NOT NULL DEFAULT '',
			digest TEXT NOT NULL,
			action TEXT NOT NULL,
			published_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_publishes_page ON publishes (space, title, id);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordPublish appends a ledger entry
func (s *SQLiteStore) RecordPublish(p Publish) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	query := `INSERT INTO publishes (run_id, space, title, page_id, digest, action, published_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, p.RunID, p.Space, p.Title, p.PageID, p.Digest, p.Action, p.PublishedAt)
	return err
}

// LastDigest returns the digest of the most recent publish of a page
func (s *SQLiteStore) LastDigest(space, title string) (string, error) {
	query := `SELECT digest FROM publishes WHERE space = ? AND title = ? ORDER BY id DESC LIMIT 1`
	var digest string
	err := s.db.QueryRow(query, space, title).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return digest, err
}

// ListPublished retrieves the most recent ledger entries
func (s *SQLiteStore) ListPublished(limit int) ([]Publish, error) {
	query := `SELECT id, run_id, space, title, page_id, digest, action, published_at FROM publishes ORDER BY id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublishes(rows)
}

func scanPublishes(rows *sql.Rows) ([]Publish, error) {
	var results []Publish
	for rows.Next() {
		var p Publish
		if err := rows.Scan(&p.ID, &p.RunID, &p.Space, &p.Title, &p.PageID, &p.Digest, &p.Action, &p.PublishedAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
