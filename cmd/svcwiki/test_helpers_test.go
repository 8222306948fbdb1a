package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"svcwiki/internal/catalog/catalogtest"
	"svcwiki/internal/confluence"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	// Mock exit
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				// This is an expected exit, don't re-panic
				return
			}
			panic(r) // Re-panic actual panics
		}
	}()
	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// testEnv is a catalogue, a wiki and a documentation site on httptest servers.
type testEnv struct {
	catalog *catalogtest.Server
	wiki    *rpcWiki
	docs    *httptest.Server
	wikiURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Chdir(t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	env := &testEnv{catalog: catalogtest.NewServer(t), wiki: newRPCWiki()}
	env.docs = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>User Guide</title></head></html>")
	}))
	t.Cleanup(env.docs.Close)

	wikiSrv := httptest.NewServer(env.wiki)
	t.Cleanup(wikiSrv.Close)
	env.wikiURL = wikiSrv.URL + confluence.RPCPath

	var entries []any
	for i, name := range []string{"Occurrence Search", "BLAST", "Unrelated Tool"} {
		categories := []string{"BioVeL", "Sequences"}
		if name == "Unrelated Tool" {
			categories = []string{"Other"}
		}
		entries = append(entries, env.catalog.AddService(catalogtest.Service{
			ID:                i + 1,
			Name:              name,
			Description:       "Does useful things with data.",
			Categories:        categories,
			DocumentationURLs: []string{env.docs.URL + "/guide"},
			Licenses:          []string{"MIT"},
			Contacts:          []string{"help@example.org"},
			Variants: []catalogtest.Variant{{
				Name:        "SOAP",
				WSDL:        "http://ws.example.org/wsdl",
				Deployments: []string{"http://ws.example.org/"},
				Operations:  []catalogtest.Operation{{Name: "run", Description: "Runs"}},
			}},
		}))
	}
	env.catalog.HandleList("/services", "services", entries)

	viper.Set("catalog.base_url", env.catalog.Base())
	viper.Set("wiki.base_url", env.wikiURL)
	viper.Set("wiki.username", "bot")
	viper.Set("wiki.password", "secret")
	viper.Set("wiki.space", "DOC")
	viper.Set("wiki.parent_title", "Supported Services")
	viper.Set("wiki.index_parent_title", "Home")
	viper.Set("report.required_category", "BioVeL")
	viper.Set("store.type", "sqlite")
	viper.Set("store.dsn", "ledger.db")
	viper.Set("notifications.slack.enabled", false)
	return env
}

// rpcWiki is a minimal in-memory wiki speaking the JSON-RPC dialect.
type rpcWiki struct {
	mu     sync.Mutex
	pages  map[string]map[string]any
	stores int
	nextID int
}

func newRPCWiki() *rpcWiki {
	w := &rpcWiki{pages: make(map[string]map[string]any), nextID: 100}
	for id, title := range map[string]string{"1": "Home", "2": "Supported Services"} {
		w.pages[title] = map[string]any{"id": id, "space": "DOC", "title": title, "version": "1", "parentId": "0", "content": ""}
	}
	return w
}

func (w *rpcWiki) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.mu.Lock()
	defer w.mu.Unlock()

	switch r.URL.Path {
	case confluence.RPCPath + "/getPage":
		var args []string
		json.Unmarshal(body, &args)
		page, ok := w.pages[args[1]]
		if !ok {
			io.WriteString(rw, `{"error": {"code": 500, "message": "No content with the given title"}}`)
			return
		}
		json.NewEncoder(rw).Encode(page)
	case confluence.RPCPath + "/storePage":
		var args []map[string]any
		json.Unmarshal(body, &args)
		update := args[0]
		w.stores++
		if _, ok := update["id"]; !ok {
			w.nextID++
			update["id"] = fmt.Sprint(w.nextID)
			update["version"] = "1"
		}
		w.pages[update["title"].(string)] = update
		json.NewEncoder(rw).Encode(update)
	default:
		http.NotFound(rw, r)
	}
}

func (w *rpcWiki) remove(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pages, title)
}

func (w *rpcWiki) page(title string) map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pages[title]
}
