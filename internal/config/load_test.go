package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("Defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		require.NoError(t, Load(""))

		cfg, err := Current()
		require.NoError(t, err)
		assert.Equal(t, 50, cfg.Catalog.PerPage)
		assert.Equal(t, 500, cfg.Wiki.NotFoundCode)
		assert.Equal(t, "Service - {name}", cfg.Wiki.PageTitleFormat)
		assert.Equal(t, 15*time.Second, cfg.LinkCheck.Timeout)
		assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, 3, cfg.Index.Columns)
		assert.Equal(t, "none", cfg.Store.Type)
		require.Len(t, cfg.LinkCheck.LongLinks, 1)
		assert.True(t, cfg.LinkCheck.LongLinks[0].Matches("https://wiki.biovel.eu/display/doc/Rserve"))
		assert.False(t, cfg.LinkCheck.LongLinks[0].Matches("https://wiki.biovel.eu/x/AbC"))
		assert.True(t, cfg.Sync.UpdateServicePages)
		assert.Equal(t, "svcwiki", cfg.Metrics.Job)
	})

	t.Run("Load From Env", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("SVCWIKI_WIKI_PASSWORD", "s3cret")
		t.Setenv("SVCWIKI_CATALOG_PER_PAGE", "7")

		require.NoError(t, Load(""))

		cfg, err := Current()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Wiki.Password)
		assert.Equal(t, 7, cfg.Catalog.PerPage)
	})

	t.Run("Load From File", func(t *testing.T) {
		viper.Reset()
		dir := t.TempDir()
		path := filepath.Join(dir, "svcwiki.yaml")
		content := `
catalog:
  base_url: https://catalog.example.org/
  schema:
    derived:
      categories: categories
wiki:
  host: wiki.example.org
  space: DOC
  parent_title: Supported Services
  index_parent_title: Home
linkcheck:
  timeout: 3s
  long_links:
    - prefixes: ["https://wiki.example.org/display/"]
      short_prefixes: ["https://wiki.example.org/x/"]
      label: "(long link)"
index:
  columns: 2
  extra_pages:
    - name: Rserve
      title: Rserve Server
report:
  rubric:
    missing_license: 1
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		require.NoError(t, Load(path))

		cfg, err := Current()
		require.NoError(t, err)
		assert.Equal(t, "https://catalog.example.org/", cfg.Catalog.BaseURL)
		assert.Equal(t, "wiki.example.org", cfg.Wiki.Host)
		assert.Equal(t, 3*time.Second, cfg.LinkCheck.Timeout)
		require.Len(t, cfg.LinkCheck.LongLinks, 1)
		assert.Equal(t, "(long link)", cfg.LinkCheck.LongLinks[0].Label)
		assert.Equal(t, []IndexPage{{Name: "Rserve", Title: "Rserve Server"}}, cfg.Index.ExtraPages)
		assert.Equal(t, map[string]int{"missing_license": 1}, cfg.Report.Rubric)
		assert.Equal(t, 2, cfg.Index.Columns)
		assert.NoError(t, Validate(cfg))
	})

	t.Run("Missing Explicit File", func(t *testing.T) {
		viper.Reset()
		err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})
}

func TestWikiTitle(t *testing.T) {
	w := WikiConfig{PageTitleFormat: "Service - {name} ({id})"}
	assert.Equal(t, "Service - BLAST (42)", w.Title("42", "BLAST"))
}
