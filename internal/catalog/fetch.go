package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "svcwiki/internal/errors"
)

// DefaultPerPage is the page size used for list endpoints.
const DefaultPerPage = 50

type fetchOptions struct {
	headers     map[string]string
	query       map[string]string
	expectedTag string
}

// FetchOption augments a catalog request.
type FetchOption func(*fetchOptions)

// WithHeader adds a request header.
func WithHeader(key, value string) FetchOption {
	return func(o *fetchOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) FetchOption {
	return func(o *fetchOptions) {
		if o.query == nil {
			o.query = make(map[string]string)
		}
		o.query[key] = value
	}
}

// WithExpectedTag requires the response envelope's single key to equal tag.
func WithExpectedTag(tag string) FetchOption {
	return func(o *fetchOptions) {
		o.expectedTag = tag
	}
}

// Fetcher issues GET requests against the catalog API.
type Fetcher struct {
	HTTPClient *http.Client
	PerPage    int
	Limiter    *rate.Limiter

	mu       sync.Mutex
	requests int
}

// NewFetcher creates a fetcher with the given HTTP client. A nil client gets a
// default with a 60 second timeout.
func NewFetcher(httpClient *http.Client, perPage int) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Fetcher{
		HTTPClient: httpClient,
		PerPage:    perPage,
	}
}

// Requests returns the number of HTTP requests issued so far.
func (f *Fetcher) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// GetDocument fetches a single JSON object. The envelope is kept intact.
func (f *Fetcher) GetDocument(ctx context.Context, url string, opts ...FetchOption) (map[string]any, error) {
	o := &fetchOptions{}
	for _, opt := range opts {
		opt(o)
	}
	doc, err := f.get(ctx, url, o, nil)
	if err != nil {
		return nil, err
	}
	if o.expectedTag != "" {
		if _, err := envelope(url, doc, o.expectedTag); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// GetAll fetches every page of a list endpoint and returns the results in
// server order. Pages are numbered from 1 and the total page count is read
// from the first response.
func (f *Fetcher) GetAll(ctx context.Context, url string, opts ...FetchOption) ([]map[string]any, error) {
	o := &fetchOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var results []map[string]any
	page := 0
	totalPages := 1
	for page < totalPages {
		params := map[string]string{
			"page":     strconv.Itoa(page + 1),
			"per_page": strconv.Itoa(f.PerPage),
		}
		doc, err := f.get(ctx, url, o, params)
		if err != nil {
			return nil, err
		}

		body, err := envelope(url, doc, o.expectedTag)
		if err != nil {
			return nil, err
		}

		pages, err := pageCount(url, body)
		if err != nil {
			return nil, err
		}
		if page == 0 {
			totalPages = pages
		}

		rawResults, ok := body["results"].([]any)
		if !ok && body["results"] != nil {
			return nil, &apperrors.MalformedResponseError{URL: url, Reason: "results is not a list"}
		}
		for i, item := range rawResults {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, &apperrors.MalformedResponseError{URL: url, Reason: fmt.Sprintf("result %d is not an object", i)}
			}
			results = append(results, obj)
		}
		page++
	}
	return results, nil
}

func (f *Fetcher) get(ctx context.Context, url string, o *fetchOptions, params map[string]string) (map[string]any, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	for k, v := range o.query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	f.mu.Lock()
	f.requests++
	f.mu.Unlock()

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &apperrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}

	var doc map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &apperrors.MalformedResponseError{URL: url, Reason: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if doc == nil {
		return nil, &apperrors.MalformedResponseError{URL: url, Reason: "response is not a JSON object"}
	}
	return doc, nil
}

// envelope returns the body of a {<tag>: {...}} response.
func envelope(url string, doc map[string]any, expectedTag string) (map[string]any, error) {
	if len(doc) != 1 {
		return nil, &apperrors.MalformedResponseError{
			URL:    url,
			Reason: fmt.Sprintf("expected single top-level result, got %d keys", len(doc)),
		}
	}
	for key, value := range doc {
		if expectedTag != "" && key != expectedTag {
			return nil, &apperrors.MalformedResponseError{
				URL:    url,
				Reason: fmt.Sprintf("expected top-level key %q, got %q", expectedTag, key),
			}
		}
		body, ok := value.(map[string]any)
		if !ok {
			return nil, &apperrors.MalformedResponseError{URL: url, Reason: fmt.Sprintf("%q is not an object", key)}
		}
		return body, nil
	}
	return nil, nil
}

func pageCount(url string, body map[string]any) (int, error) {
	switch p := body["pages"].(type) {
	case json.Number:
		n, err := p.Int64()
		if err != nil {
			return 0, &apperrors.MalformedResponseError{URL: url, Reason: fmt.Sprintf("invalid pages value %q", p)}
		}
		return int(n), nil
	case float64:
		return int(p), nil
	case nil:
		return 0, &apperrors.MalformedResponseError{URL: url, Reason: "missing pages count"}
	default:
		return 0, &apperrors.MalformedResponseError{URL: url, Reason: fmt.Sprintf("invalid pages value %v", p)}
	}
}
