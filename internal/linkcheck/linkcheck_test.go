package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><TITLE>Example</TITLE></head><body>hi</body></html>")
	})
	mux.HandleFunc("/multiline", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<title>\n  Taxon &amp; Names\nGuide </title>")
	})
	mux.HandleFunc("/untitled", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain text")
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/x/abc", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<title>Short</title>")
	})
	mux.HandleFunc("/display/Space/Page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<title>Long</title>")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestChecker_Check(t *testing.T) {
	server := newTestServer(t)
	checker := New(WithTimeout(DefaultTimeout))
	ctx := context.Background()

	t.Run("title becomes link text", func(t *testing.T) {
		res := checker.Check(ctx, server.URL+"/page")
		assert.Equal(t, StateOK, res.State)
		assert.Equal(t, "Example", res.Title)
		assert.Equal(t, fmt.Sprintf(`<a href="%s/page">Example</a>`, server.URL), res.Render())
		assert.Empty(t, res.Action())
	})

	t.Run("title is trimmed and unescaped", func(t *testing.T) {
		res := checker.Check(ctx, server.URL+"/multiline")
		assert.Equal(t, "Taxon & Names Guide", res.Title)
		assert.Contains(t, res.Render(), ">Taxon &amp; Names Guide</a>")
	})

	t.Run("no title keeps raw url", func(t *testing.T) {
		res := checker.Check(ctx, server.URL+"/untitled")
		assert.Equal(t, StateOK, res.State)
		assert.Contains(t, res.Render(), "<code>"+server.URL+"/untitled</code>")
	})

	t.Run("http error", func(t *testing.T) {
		link := server.URL + "/missing"
		res := checker.Check(ctx, link)
		assert.Equal(t, StateHTTPError, res.State)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Contains(t, res.Render(), "(Link returned status 404)")
		assert.Equal(t, "Check documentation link: "+link, res.Action())
	})

	t.Run("redirect loop stops", func(t *testing.T) {
		res := checker.Check(ctx, server.URL+"/loop")
		assert.Equal(t, StateOK, res.State)
		assert.Equal(t, http.StatusFound, res.StatusCode)
	})
}

func TestChecker_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	link := server.URL + "/docs"
	server.Close()

	res := New().Check(context.Background(), link)
	assert.Equal(t, StateUnreachable, res.State)
	assert.Error(t, res.Err)
	assert.Contains(t, res.Render(), "<code>"+link+"</code>")
	assert.Contains(t, res.Render(), "(Link did not respond)")
	assert.Equal(t, "Check documentation link: "+link, res.Action())
}

func TestChecker_InvalidURL(t *testing.T) {
	for _, link := range []string{"www.example.org/docs", "see the manual", "ftp://example.org/file"} {
		t.Run(link, func(t *testing.T) {
			res := New().Check(context.Background(), link)
			assert.Equal(t, StateInvalidURL, res.State)
			assert.Equal(t, ActionRemoveText, res.Action())
			assert.Contains(t, res.Render(), "(Not a valid link)")
			assert.NotContains(t, res.Render(), "<a ")
		})
	}
}

func TestChecker_LongLinks(t *testing.T) {
	server := newTestServer(t)
	rule := LongLinkRule{
		Prefixes:      []string{server.URL + "/"},
		ShortPrefixes: []string{server.URL + "/x/"},
		Label:         "(Wiki long link)",
		Action:        "Change Wiki long link to short link",
	}
	checker := New(WithLongLinks([]LongLinkRule{rule}))
	ctx := context.Background()

	long := checker.Check(ctx, server.URL+"/display/Space/Page")
	require.NotNil(t, long.LongLink)
	assert.Equal(t, "Change Wiki long link to short link", long.Action())
	assert.Contains(t, long.Render(), "(Wiki long link)")

	short := checker.Check(ctx, server.URL+"/x/abc")
	assert.Nil(t, short.LongLink)
	assert.Empty(t, short.Action())
}

func TestChecker_Observer(t *testing.T) {
	server := newTestServer(t)
	var states []State
	checker := New(WithObserver(func(r Result) { states = append(states, r.State) }))

	checker.Check(context.Background(), server.URL+"/page")
	checker.Check(context.Background(), "nope")
	assert.Equal(t, []State{StateOK, StateInvalidURL}, states)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ok", StateOK.String())
	assert.Equal(t, "http_error", StateHTTPError.String())
	assert.Equal(t, "state(9)", State(9).String())
}
