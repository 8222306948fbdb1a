package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	apperrors "svcwiki/internal/errors"
)

// EvictionPolicy states when cached resources are dropped.
type EvictionPolicy int

const (
	// EvictNever keeps every resource for the lifetime of the cache. A batch run
	// touches each catalog resource a bounded number of times, so memory grows
	// with the catalog size only.
	EvictNever EvictionPolicy = iota
)

func (p EvictionPolicy) String() string {
	switch p {
	case EvictNever:
		return "never"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// DocumentFetcher fetches a single JSON document.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, url string, opts ...FetchOption) (map[string]any, error)
}

// Cache maps resource URLs to fetched resources. Each URL is fetched at most
// once; later lookups return the same *Resource.
type Cache struct {
	mu      sync.Mutex
	base    string
	schema  Schema
	fetcher DocumentFetcher
	policy  EvictionPolicy
	entries map[string]*Resource
}

// NewCache creates a cache for resources under base.
func NewCache(base string, schema Schema, fetcher DocumentFetcher) *Cache {
	return &Cache{
		base:    base,
		schema:  schema.withDefaults(),
		fetcher: fetcher,
		policy:  EvictNever,
		entries: make(map[string]*Resource),
	}
}

// Base returns the URL prefix that identifies catalog resources.
func (c *Cache) Base() string { return c.base }

// Schema returns the schema used for derived fields.
func (c *Cache) Schema() Schema { return c.schema }

// Policy returns the eviction policy.
func (c *Cache) Policy() EvictionPolicy { return c.policy }

// InBase reports whether url names a catalog resource.
func (c *Cache) InBase(url string) bool {
	return c.base != "" && strings.HasPrefix(url, c.base)
}

// Get returns the resource at url, fetching and caching it on first use.
func (c *Cache) Get(ctx context.Context, url string) (*Resource, error) {
	if !c.InBase(url) {
		return nil, &apperrors.InvalidResourceError{URL: url, Base: c.base}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if res, ok := c.entries[url]; ok {
		return res, nil
	}

	doc, err := c.fetcher.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	res := &Resource{url: url, fields: doc, cache: c}
	c.entries[url] = res
	return res, nil
}

// Contains reports whether url has already been fetched.
func (c *Cache) Contains(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[url]
	return ok
}

// Len returns the number of cached resources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every cached resource.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Resource)
}

// Wrap binds an already decoded object to the cache without storing it.
// List endpoints return abbreviated objects that must not shadow the full
// document at the same URL.
func (c *Cache) Wrap(fields map[string]any) *Resource {
	return &Resource{fields: fields, cache: c}
}

// Resolve converts a decoded JSON value into a Value.
func (c *Cache) Resolve(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return Value{kind: KindBool, b: t, cache: c}
	case json.Number:
		return Value{kind: KindNumber, num: t, cache: c}
	case float64:
		return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(t, 'f', -1, 64)), cache: c}
	case string:
		if c.InBase(t) {
			return Value{kind: KindRef, str: t, cache: c}
		}
		return Value{kind: KindString, str: t, cache: c}
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = c.Resolve(item)
		}
		return Value{kind: KindArray, items: items, cache: c}
	case map[string]any:
		return Value{kind: KindObject, obj: &Resource{fields: t, cache: c}, cache: c}
	default:
		return Value{kind: KindString, str: fmt.Sprint(t), cache: c}
	}
}
