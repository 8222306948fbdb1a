package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SVCWIKI_WIKI_PASSWORD.
const EnvPrefix = "SVCWIKI"

// Load initializes the configuration from file and environment variables.
// A missing default config file is not an error; a missing explicit one is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// setDefaults registers every key so environment variables are seen by Unmarshal.
func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("log_file", "")

	viper.SetDefault("catalog.base_url", "https://www.biodiversitycatalogue.org/")
	viper.SetDefault("catalog.name", "BiodiversityCatalogue")
	viper.SetDefault("catalog.per_page", 50)
	viper.SetDefault("catalog.requests_per_second", 0)

	viper.SetDefault("wiki.host", "")
	viper.SetDefault("wiki.base_url", "")
	viper.SetDefault("wiki.username", "")
	viper.SetDefault("wiki.password", "")
	viper.SetDefault("wiki.space", "")
	viper.SetDefault("wiki.parent_title", "")
	viper.SetDefault("wiki.index_parent_title", "")
	viper.SetDefault("wiki.page_title_format", "Service - {name}")
	viper.SetDefault("wiki.not_found_code", 500)
	viper.SetDefault("wiki.insecure_skip_verify", false)

	viper.SetDefault("report.required_category", "")
	viper.SetDefault("report.hide_required_category", true)

	viper.SetDefault("linkcheck.timeout", "15s")
	viper.SetDefault("linkcheck.insecure_skip_verify", true)
	// Documentation on the project wiki should use its tiny links.
	viper.SetDefault("linkcheck.long_links", []map[string]any{{
		"prefixes":       []string{"http://wiki.biovel.eu", "https://wiki.biovel.eu"},
		"short_prefixes": []string{"http://wiki.biovel.eu/x/", "https://wiki.biovel.eu/x/"},
		"label":          "(wiki long link)",
		"action":         "Change wiki long link to tiny link (using Wiki menu Tools -> Link to this page...)",
	}})

	viper.SetDefault("index.columns", 3)
	viper.SetDefault("index.footer_html", "")

	viper.SetDefault("sync.update_service_pages", true)

	viper.SetDefault("store.type", "none")
	viper.SetDefault("store.dsn", "")

	viper.SetDefault("metrics.pushgateway_url", "")
	viper.SetDefault("metrics.job", "svcwiki")

	viper.SetDefault("http.timeout", "60s")

	// Notification Defaults
	slackEnabled := false
	if os.Getenv("SLACK_BOT_USER_TOKEN") != "" {
		slackEnabled = true
	}
	viper.SetDefault("notifications.slack.enabled", slackEnabled)
	viper.SetDefault("notifications.slack.channel", "#general")
	viper.SetDefault("notifications.slack.webhook_url", "")
}
