package cmdutils

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"svcwiki/internal/catalog"
	"svcwiki/internal/config"
	"svcwiki/internal/confluence"
	"svcwiki/internal/db"
	"svcwiki/internal/linkcheck"
	"svcwiki/internal/metrics"
	"svcwiki/internal/notify"
	"svcwiki/internal/report"
)

// GetConfig decodes and validates the loaded configuration.
var GetConfig = func() (*config.Config, error) {
	cfg, err := config.Current()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetCatalogClient initializes a catalog client from configuration.
var GetCatalogClient = func(ctx context.Context, cfg *config.Config) (*catalog.Client, error) {
	return catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		catalog.WithPerPage(cfg.Catalog.PerPage),
		catalog.WithSchema(catalog.DefaultSchema().Merge(cfg.Catalog.Schema)),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond),
	)
}

// GetWikiClient initializes a wiki client using config or environment variables.
var GetWikiClient = func(ctx context.Context, cfg *config.Config) (*confluence.Client, error) {
	endpoint := cfg.Wiki.BaseURL
	if endpoint == "" {
		endpoint = confluence.Endpoint(cfg.Wiki.Host)
	}

	username := cfg.Wiki.Username
	if username == "" {
		username = os.Getenv("CONFLUENCE_USERNAME")
	}
	password := cfg.Wiki.Password
	if password == "" {
		password = os.Getenv("CONFLUENCE_PASSWORD")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("wiki credentials are required: set wiki.username and wiki.password (or SVCWIKI_WIKI_USERNAME and SVCWIKI_WIKI_PASSWORD)")
	}

	opts := []confluence.Option{
		confluence.WithTimeout(cfg.HTTP.Timeout),
		confluence.WithInsecureSkipVerify(cfg.Wiki.InsecureSkipVerify),
	}
	if cfg.Wiki.NotFoundCode != 0 {
		opts = append(opts, confluence.WithNotFoundCode(cfg.Wiki.NotFoundCode))
	}
	return confluence.NewClient(endpoint, username, password, opts...), nil
}

// GetStore opens the publish ledger.
var GetStore = func(cfg *config.Config) (db.Store, error) {
	return db.NewStore(db.StoreConfig{
		Type:             cfg.Store.Type,
		ConnectionString: cfg.Store.DSN,
	})
}

// GetLinkChecker builds the documentation link checker. Results are counted
// in m when it is not nil.
var GetLinkChecker = func(cfg *config.Config, m *metrics.Metrics) *linkcheck.Checker {
	opts := []linkcheck.Option{
		linkcheck.WithTimeout(cfg.LinkCheck.Timeout),
		linkcheck.WithInsecureSkipVerify(cfg.LinkCheck.InsecureSkipVerify),
		linkcheck.WithLongLinks(cfg.LinkCheck.LongLinks),
	}
	if m != nil {
		opts = append(opts, linkcheck.WithObserver(func(r linkcheck.Result) {
			m.LinkChecks.WithLabelValues(r.State.String()).Inc()
		}))
	}
	return linkcheck.New(opts...)
}

// GetReportBuilder builds the report generator.
var GetReportBuilder = func(cfg *config.Config, links report.LinkChecker) (*report.Builder, error) {
	rubric, err := report.DefaultRubric().WithOverrides(cfg.Report.Rubric)
	if err != nil {
		return nil, err
	}
	return report.NewBuilder(links, report.Options{
		Rubric:               rubric,
		RequiredCategory:     cfg.Report.RequiredCategory,
		HideRequiredCategory: cfg.Report.HideRequiredCategory,
		CatalogName:          cfg.Catalog.Name,
	}), nil
}

// GetNotifier initializes run notifications. The bot token is read from SLACK_BOT_USER_TOKEN.
var GetNotifier = func(cfg *config.Config) *notify.Manager {
	return notify.NewManager(notify.Options{
		Enabled:    cfg.Notifications.Slack.Enabled,
		Channel:    cfg.Notifications.Slack.Channel,
		BotToken:   strings.TrimSpace(os.Getenv("SLACK_BOT_USER_TOKEN")),
		WebhookURL: cfg.Notifications.Slack.WebhookURL,
	})
}
