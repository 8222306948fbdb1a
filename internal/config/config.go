// Package config loads and validates svcwiki configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"svcwiki/internal/catalog"
	"svcwiki/internal/linkcheck"
)

// Config is the typed view of the viper configuration.
type Config struct {
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`

	Catalog       CatalogConfig       `mapstructure:"catalog"`
	Wiki          WikiConfig          `mapstructure:"wiki"`
	Report        ReportConfig        `mapstructure:"report"`
	LinkCheck     LinkCheckConfig     `mapstructure:"linkcheck"`
	Index         IndexConfig         `mapstructure:"index"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Store         StoreConfig         `mapstructure:"store"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	HTTP          HTTPConfig          `mapstructure:"http"`
}

type CatalogConfig struct {
	BaseURL           string         `mapstructure:"base_url" validate:"required,url"`
	Name              string         `mapstructure:"name"`
	PerPage           int            `mapstructure:"per_page" validate:"gte=1,lte=1000"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second" validate:"gte=0"`
	Schema            catalog.Schema `mapstructure:"schema"`
}

type WikiConfig struct {
	Host               string `mapstructure:"host"`
	BaseURL            string `mapstructure:"base_url" validate:"omitempty,url"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	Space              string `mapstructure:"space" validate:"required"`
	ParentTitle        string `mapstructure:"parent_title" validate:"required"`
	IndexParentTitle   string `mapstructure:"index_parent_title" validate:"required"`
	PageTitleFormat    string `mapstructure:"page_title_format" validate:"required"`
	NotFoundCode       int    `mapstructure:"not_found_code"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

type ReportConfig struct {
	RequiredCategory     string         `mapstructure:"required_category"`
	HideRequiredCategory bool           `mapstructure:"hide_required_category"`
	Rubric               map[string]int `mapstructure:"rubric"`
}

type LinkCheckConfig struct {
	Timeout            time.Duration            `mapstructure:"timeout" validate:"gt=0"`
	InsecureSkipVerify bool                     `mapstructure:"insecure_skip_verify"`
	LongLinks          []linkcheck.LongLinkRule `mapstructure:"long_links" validate:"dive"`
}

// IndexPage is an index link to a page not generated from the catalog.
type IndexPage struct {
	Name  string `mapstructure:"name" validate:"required"`
	Title string `mapstructure:"title" validate:"required"`
}

type IndexConfig struct {
	Columns    int         `mapstructure:"columns" validate:"oneof=2 3"`
	ExtraPages []IndexPage `mapstructure:"extra_pages" validate:"dive"`
	FooterHTML string      `mapstructure:"footer_html"`
}

type SyncConfig struct {
	UpdateServicePages bool `mapstructure:"update_service_pages"`
}

type StoreConfig struct {
	Type string `mapstructure:"type" validate:"omitempty,oneof=sqlite sqlite3 postgres postgresql none"`
	DSN  string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job"`
}

type NotificationsConfig struct {
	Slack SlackConfig `mapstructure:"slack"`
}

type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Channel    string `mapstructure:"channel"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Current decodes the loaded viper configuration.
func Current() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}
