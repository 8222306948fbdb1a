package db

// NoopStore is a Store that records nothing. Every page is published.
type NoopStore struct{}

func (NoopStore) Close() error                              { return nil }
func (NoopStore) RecordPublish(Publish) error               { return nil }
func (NoopStore) LastDigest(string, string) (string, error) { return "", nil }
func (NoopStore) ListPublished(int) ([]Publish, error)      { return nil, nil }
