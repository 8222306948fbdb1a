// Package linkcheck checks documentation links and renders them for a report page.
package linkcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"svcwiki/internal/stringutils"
)

const (
	// DefaultTimeout bounds a single link check.
	DefaultTimeout = 15 * time.Second
	// MaxRedirects is the number of redirects followed before the last response is used.
	MaxRedirects = 5
	// MaxBodySize is the number of body bytes searched for a <title>.
	MaxBodySize = 1 << 20

	ActionRemoveText = "Remove text from documentation links"
	actionCheckLink  = "Check documentation link: "
)

var titleTagRegex = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// State is the outcome class of a link check.
type State int

const (
	StateOK State = iota
	StateInvalidURL
	StateUnreachable
	StateHTTPError
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateInvalidURL:
		return "invalid_url"
	case StateUnreachable:
		return "unreachable"
	case StateHTTPError:
		return "http_error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LongLinkRule flags links that use a long form where a short link exists,
// e.g. wiki page URLs that should use the wiki's tiny-link form.
type LongLinkRule struct {
	Prefixes      []string `mapstructure:"prefixes" yaml:"prefixes"`
	ShortPrefixes []string `mapstructure:"short_prefixes" yaml:"short_prefixes"`
	Label         string   `mapstructure:"label" yaml:"label"`
	Action        string   `mapstructure:"action" yaml:"action"`
}

// Matches reports whether link starts with one of the rule's prefixes and
// with none of its short prefixes.
func (r LongLinkRule) Matches(link string) bool {
	if !hasAnyPrefix(link, r.Prefixes) {
		return false
	}
	return !hasAnyPrefix(link, r.ShortPrefixes)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Result is the outcome of checking one link.
type Result struct {
	URL        string
	State      State
	StatusCode int
	Title      string
	LongLink   *LongLinkRule
	Err        error
}

// Render returns the storage-format fragment displayed for the link.
func (r Result) Render() string {
	switch r.State {
	case StateInvalidURL:
		return stringutils.Text(r.URL) + " " + stringutils.Alert("(Not a valid link)")
	case StateUnreachable:
		return stringutils.CodeLink(r.URL) + stringutils.Alert(" (Link did not respond)")
	case StateHTTPError:
		return stringutils.CodeLink(r.URL) + stringutils.Alert(fmt.Sprintf(" (Link returned status %d)", r.StatusCode))
	}

	out := stringutils.CodeLink(r.URL)
	if r.Title != "" {
		out = stringutils.Link(r.URL, r.Title)
	}
	if r.LongLink != nil {
		label := r.LongLink.Label
		if label == "" {
			label = "(wiki long link)"
		}
		out += stringutils.Alert(" " + label)
	}
	return out
}

// Action returns the remediation for the link, or "" if none is needed.
func (r Result) Action() string {
	switch r.State {
	case StateInvalidURL:
		return ActionRemoveText
	case StateUnreachable, StateHTTPError:
		return actionCheckLink + r.URL
	}
	if r.LongLink != nil {
		if r.LongLink.Action != "" {
			return r.LongLink.Action
		}
		return "Change long link to short link: " + r.URL
	}
	return ""
}

// Checker fetches links with a bounded client.
type Checker struct {
	client  *http.Client
	rules   []LongLinkRule
	observe func(Result)
}

// Option configures a Checker.
type Option func(*checkerOptions)

type checkerOptions struct {
	timeout    time.Duration
	skipVerify bool
	rules      []LongLinkRule
	client     *http.Client
	observe    func(Result)
}

// WithTimeout sets the per-link timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *checkerOptions) { o.timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *checkerOptions) { o.skipVerify = skip }
}

// WithLongLinks sets the long-link rules.
func WithLongLinks(rules []LongLinkRule) Option {
	return func(o *checkerOptions) { o.rules = rules }
}

// WithHTTPClient replaces the HTTP client. Timeout and TLS options are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *checkerOptions) { o.client = c }
}

// WithObserver registers a callback invoked with every result.
func WithObserver(fn func(Result)) Option {
	return func(o *checkerOptions) { o.observe = fn }
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	o := &checkerOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if o.skipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		client = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return &Checker{client: client, rules: o.rules, observe: o.observe}
}

// Check fetches link and classifies the outcome. It never returns an error;
// failures are part of the Result.
func (c *Checker) Check(ctx context.Context, link string) Result {
	res := c.check(ctx, link)
	slog.Debug("Checked documentation link", "url", link, "state", res.State.String(), "status", res.StatusCode)
	if c.observe != nil {
		c.observe(res)
	}
	return res
}

func (c *Checker) check(ctx context.Context, link string) Result {
	res := Result{URL: link}

	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		res.State = StateInvalidURL
		res.Err = err
		return res
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		res.State = StateInvalidURL
		res.Err = err
		return res
	}
	req.Header.Set("User-Agent", "svcwiki-linkcheck/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		res.State = StateUnreachable
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		res.State = StateHTTPError
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err == nil {
		res.Title = extractTitle(string(body))
	}
	for i := range c.rules {
		if c.rules[i].Matches(link) {
			res.LongLink = &c.rules[i]
			break
		}
	}
	res.State = StateOK
	return res
}

func extractTitle(page string) string {
	match := titleTagRegex.FindStringSubmatch(page)
	if len(match) < 2 {
		return ""
	}
	title := strings.TrimSpace(match[1])
	title = strings.ReplaceAll(title, "\r\n", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	return html.UnescapeString(title)
}
