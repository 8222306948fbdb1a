package cmdutils

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcwiki/internal/config"
	"svcwiki/internal/confluence"
	"svcwiki/internal/db"
	"svcwiki/internal/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{BaseURL: "https://catalog.example.org", PerPage: 25},
		Wiki: config.WikiConfig{
			Host:            "wiki.example.org",
			Username:        "bot",
			Password:        "secret",
			Space:           "DOC",
			PageTitleFormat: "Service - {name}",
		},
		LinkCheck: config.LinkCheckConfig{Timeout: time.Second},
		Store:     config.StoreConfig{Type: "none"},
		HTTP:      config.HTTPConfig{Timeout: 5 * time.Second},
	}
}

func TestGetConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("Invalid", func(t *testing.T) {
		viper.Reset()
		viper.Set("catalog.base_url", "")
		_, err := GetConfig()
		assert.ErrorContains(t, err, "configuration validation failed")
	})

	t.Run("Valid", func(t *testing.T) {
		viper.Reset()
		viper.Set("catalog.base_url", "https://catalog.example.org/")
		viper.Set("catalog.per_page", 50)
		viper.Set("wiki.host", "wiki.example.org")
		viper.Set("wiki.space", "DOC")
		viper.Set("wiki.parent_title", "Supported Services")
		viper.Set("wiki.index_parent_title", "Home")
		viper.Set("wiki.page_title_format", "Service - {name}")
		viper.Set("linkcheck.timeout", "15s")
		viper.Set("http.timeout", "60s")
		viper.Set("index.columns", 3)

		cfg, err := GetConfig()
		require.NoError(t, err)
		assert.Equal(t, "DOC", cfg.Wiki.Space)
	})
}

func TestGetCatalogClient(t *testing.T) {
	client, err := GetCatalogClient(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example.org/", client.BaseURL)

	cfg := testConfig()
	cfg.Catalog.BaseURL = ""
	_, err = GetCatalogClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestGetWikiClient(t *testing.T) {
	t.Run("From Config", func(t *testing.T) {
		client, err := GetWikiClient(context.Background(), testConfig())
		require.NoError(t, err)
		assert.Equal(t, "https://wiki.example.org"+confluence.RPCPath, client.BaseURL)
		assert.Equal(t, confluence.DefaultNotFoundCode, client.NotFoundCode)
		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
	})

	t.Run("Base URL Wins", func(t *testing.T) {
		cfg := testConfig()
		cfg.Wiki.BaseURL = "http://localhost:8090/rpc"
		cfg.Wiki.NotFoundCode = 404
		client, err := GetWikiClient(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8090/rpc", client.BaseURL)
		assert.Equal(t, 404, client.NotFoundCode)
	})

	t.Run("Environment Variables", func(t *testing.T) {
		cfg := testConfig()
		cfg.Wiki.Username, cfg.Wiki.Password = "", ""
		t.Setenv("CONFLUENCE_USERNAME", "env-bot")
		t.Setenv("CONFLUENCE_PASSWORD", "env-secret")

		client, err := GetWikiClient(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, "env-bot", client.Username)
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.Wiki.Password = ""
		t.Setenv("CONFLUENCE_PASSWORD", "")
		client, err := GetWikiClient(context.Background(), cfg)
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestGetStore(t *testing.T) {
	store, err := GetStore(testConfig())
	require.NoError(t, err)
	assert.IsType(t, db.NoopStore{}, store)

	cfg := testConfig()
	cfg.Store.Type = "mongo"
	_, err = GetStore(cfg)
	assert.Error(t, err)
}

func TestGetLinkChecker(t *testing.T) {
	m := metrics.NewMetrics()
	checker := GetLinkChecker(testConfig(), m)

	res := checker.Check(context.Background(), "not a link")
	assert.Equal(t, "invalid_url", res.State.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkChecks.WithLabelValues("invalid_url")))
}

func TestGetReportBuilder(t *testing.T) {
	cfg := testConfig()
	_, err := GetReportBuilder(cfg, GetLinkChecker(cfg, nil))
	require.NoError(t, err)

	cfg.Report.Rubric = map[string]int{"no_such_check": 1}
	_, err = GetReportBuilder(cfg, GetLinkChecker(cfg, nil))
	assert.ErrorContains(t, err, "unknown check")
}

func TestGetNotifier(t *testing.T) {
	t.Setenv("SLACK_BOT_USER_TOKEN", "")
	cfg := testConfig()
	assert.False(t, GetNotifier(cfg).Enabled())

	cfg.Notifications.Slack.Enabled = true
	t.Setenv("SLACK_BOT_USER_TOKEN", "xoxb-test")
	assert.True(t, GetNotifier(cfg).Enabled())
}
