// Package confluence talks to the Confluence JSON-RPC API.
package confluence

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "svcwiki/internal/errors"
)

// DefaultNotFoundCode is the getPage error code this deployment uses for a
// page that does not exist.
const DefaultNotFoundCode = 500

// RPCPath is the JSON-RPC endpoint path below the wiki host.
const RPCPath = "/rpc/json-rpc/confluenceservice-v2"

// ErrPageNotFound is returned by GetPage when the page does not exist.
var ErrPageNotFound = errors.New("page not found")

// Endpoint returns the JSON-RPC endpoint for host.
func Endpoint(host string) string {
	return "https://" + strings.TrimSuffix(host, "/") + RPCPath
}

// Client handles Confluence JSON-RPC calls.
type Client struct {
	BaseURL      string
	Username     string
	Password     string
	NotFoundCode int
	HTTPClient   *http.Client

	// Force stores pages even when the wiki already has identical content.
	Force bool
}

// Option configures a Client.
type Option func(*Client)

// WithNotFoundCode sets the getPage error code that means "no such page".
func WithNotFoundCode(code int) Option {
	return func(c *Client) { c.NotFoundCode = code }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		c.HTTPClient.Transport = transport
	}
}

// NewClient creates a new Confluence client for the JSON-RPC endpoint at baseURL.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		Username:     username,
		Password:     password,
		NotFoundCode: DefaultNotFoundCode,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call invokes method with positional args and returns the decoded result
// object. An error envelope becomes *errors.RPCError.
func (c *Client) call(ctx context.Context, method string, args ...any) (map[string]json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", c.BaseURL, method)

	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s arguments: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &apperrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: url, Body: truncate(string(body), 512)}
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(body, &result); err != nil || result == nil {
		return nil, &apperrors.MalformedResponseError{URL: url, Reason: "response is not a JSON object"}
	}

	if raw, ok := result["error"]; ok {
		var envelope struct {
			Code    json.RawMessage `json:"code"`
			Message string          `json:"message"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, &apperrors.MalformedResponseError{URL: url, Reason: "undecodable error envelope"}
		}
		code, _ := strconv.Atoi(rawString(envelope.Code))
		return nil, apperrors.NewRPCError(method, code, envelope.Message)
	}
	return result, nil
}

// GetPage fetches the page titled title in space. It returns an error
// wrapping ErrPageNotFound when the page does not exist.
func (c *Client) GetPage(ctx context.Context, space, title string) (*Page, error) {
	result, err := c.call(ctx, "getPage", space, title)
	if err != nil {
		var rpcErr *apperrors.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == c.NotFoundCode {
			return nil, fmt.Errorf("%w: %s/%s", ErrPageNotFound, space, title)
		}
		return nil, err
	}
	page := newPage(result)
	if page.ID == "" {
		return nil, &apperrors.MalformedResponseError{URL: c.BaseURL + "/getPage", Reason: "page has no id"}
	}
	return page, nil
}

// GetPageID returns the id of the page titled title in space.
func (c *Client) GetPageID(ctx context.Context, space, title string) (string, error) {
	page, err := c.GetPage(ctx, space, title)
	if err != nil {
		return "", err
	}
	return page.ID, nil
}

// StorePage creates or updates a page. The stored page must carry content.
func (c *Client) StorePage(ctx context.Context, update map[string]json.RawMessage) (*Page, error) {
	result, err := c.call(ctx, "storePage", update)
	if err != nil {
		return nil, err
	}
	if _, ok := result["content"]; !ok {
		return nil, &apperrors.MalformedResponseError{URL: c.BaseURL + "/storePage", Reason: "stored page has no content"}
	}
	return newPage(result), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
