package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Publish is one ledger entry: a page stored on the wiki.
type Publish struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Space       string    `json:"space"`
	Title       string    `json:"title"`
	PageID      string    `json:"page_id"`
	Digest      string    `json:"digest"`
	Action      string    `json:"action"`
	PublishedAt time.Time `json:"published_at"`
}

// Store keeps the history of publishes. It never decides whether a page is
// stored; the wiki's own content does.
type Store interface {
	Close() error
	RecordPublish(p Publish) error
	// LastDigest returns the digest of the latest publish of the page, or ""
	// if it was never recorded.
	LastDigest(space, title string) (string, error)
	ListPublished(limit int) ([]Publish, error)
}

// Digest returns the hex sha256 of page content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
