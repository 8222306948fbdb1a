package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS publishes (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			space TEXT NOT NULL,
			title TEXT NOT NULL,
			page_id TEXT NOT NULL DEFAULT '',
			digest TEXT NOT NULL,
			action TEXT NOT NULL,
			published_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_publishes_page ON publishes (space, title, id);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	slog.Debug("postgres ledger migrated")
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RecordPublish appends a ledger entry
func (s *PostgresStore) RecordPublish(p Publish) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	query := `INSERT INTO publishes (run_id, space, title, page_id, digest, action, published_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.Exec(query, p.RunID, p.Space, p.Title, p.PageID, p.Digest, p.Action, p.PublishedAt)
	return err
}

// LastDigest returns the digest of the most recent publish of a page
func (s *PostgresStore) LastDigest(space, title string) (string, error) {
	query := `SELECT digest FROM publishes WHERE space = $1 AND title = $2 ORDER BY id DESC LIMIT 1`
	var digest string
	err := s.db.QueryRow(query, space, title).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return digest, err
}

// ListPublished retrieves the most recent ledger entries
func (s *PostgresStore) ListPublished(limit int) ([]Publish, error) {
	query := `SELECT id, run_id, space, title, page_id, digest, action, published_at FROM publishes ORDER BY id DESC LIMIT $1`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPublishes(rows)
}
