package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	apperrors "svcwiki/internal/errors"
)

// Client exposes the catalog's services and categories as a lazily resolved
// resource graph.
type Client struct {
	BaseURL string

	fetcher    *Fetcher
	cache      *Cache
	categories map[string]*Category
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	perPage    int
	schema     Schema
	rps        float64
}

// WithHTTPClient sets the HTTP client used for catalog requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithPerPage sets the list page size.
func WithPerPage(n int) Option {
	return func(o *clientOptions) { o.perPage = n }
}

// WithSchema sets the URL conventions of the catalog API.
func WithSchema(s Schema) Option {
	return func(o *clientOptions) { o.schema = s }
}

// WithRateLimit caps the request rate. Zero means unlimited.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(o *clientOptions) { o.rps = requestsPerSecond }
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	o := &clientOptions{schema: DefaultSchema()}
	for _, opt := range opts {
		opt(o)
	}

	fetcher := NewFetcher(o.httpClient, o.perPage)
	if o.rps > 0 {
		fetcher.Limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}

	return &Client{
		BaseURL: baseURL,
		fetcher: fetcher,
		cache:   NewCache(baseURL, o.schema, fetcher),
	}, nil
}

// Cache returns the client's resource cache.
func (c *Client) Cache() *Cache { return c.cache }

// Requests returns the number of HTTP requests issued by the client.
func (c *Client) Requests() int { return c.fetcher.Requests() }

// Resource returns the catalog resource at url.
func (c *Client) Resource(ctx context.Context, url string) (*Resource, error) {
	if !c.cache.InBase(url) {
		return nil, &apperrors.InvalidResourceError{URL: url, Base: c.BaseURL}
	}
	return c.cache.Get(ctx, url)
}

// ListServices returns every service in catalog order. Each service carries
// the fields of the list response; everything else is fetched on demand.
func (c *Client) ListServices(ctx context.Context) ([]*Service, error) {
	results, err := c.fetcher.GetAll(ctx, c.BaseURL+"services")
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*Service, 0, len(results))
	for _, result := range results {
		res := c.cache.Wrap(result)
		if res.URL() == "" {
			return nil, &apperrors.MalformedResponseError{URL: c.BaseURL + "services", Reason: "service without self URL"}
		}
		services = append(services, &Service{res: res})
	}
	return services, nil
}

// GetService fetches the service document at url.
func (c *Client) GetService(ctx context.Context, url string) (*Service, error) {
	doc, err := c.Resource(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get service %s: %w", url, err)
	}
	body, _, err := doc.Unwrap()
	if err != nil {
		return nil, err
	}
	if body.url == "" {
		body.url = url
	}
	return &Service{res: body}, nil
}

// GetServiceByID fetches a service by its numeric catalog ID.
func (c *Client) GetServiceByID(ctx context.Context, id int) (*Service, error) {
	return c.GetService(ctx, fmt.Sprintf("%sservices/%d", c.BaseURL, id))
}

// ListCategories returns every category keyed by URL. The list is fetched
// once per client.
func (c *Client) ListCategories(ctx context.Context) (map[string]*Category, error) {
	if c.categories != nil {
		return c.categories, nil
	}

	results, err := c.fetcher.GetAll(ctx, c.BaseURL+"categories")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make(map[string]*Category, len(results))
	for _, result := range results {
		cat := newCategory(c.cache.Wrap(result))
		if cat.URL == "" {
			return nil, &apperrors.MalformedResponseError{URL: c.BaseURL + "categories", Reason: "category without resource URL"}
		}
		categories[cat.URL] = cat
	}
	c.categories = categories
	return categories, nil
}

// SortedCategories returns the categories ordered by name.
func (c *Client) SortedCategories(ctx context.Context) ([]*Category, error) {
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Category, 0, len(categories))
	for _, cat := range categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// TopLevelCategory follows broader links from the category at url to its root.
func (c *Client) TopLevelCategory(ctx context.Context, url string) (*Category, error) {
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for {
		cat, ok := categories[url]
		if !ok {
			return nil, &apperrors.InvalidResourceError{URL: url, Base: c.BaseURL + "categories"}
		}
		if seen[url] {
			return nil, &apperrors.ProtocolError{URL: url, Reason: "category hierarchy has a cycle"}
		}
		seen[url] = true

		parent, err := cat.parentURL(ctx)
		if err != nil {
			return nil, err
		}
		if parent == "" {
			return cat, nil
		}
		url = parent
	}
}
