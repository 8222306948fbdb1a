package main

import (
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcwiki/internal/orchestrator"
)

func fixedRunID(t *testing.T) {
	old := newRunID
	newRunID = func() string { return "0f1e2d3c-run" }
	t.Cleanup(func() { newRunID = old })
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "svcwiki version")
	assert.Contains(t, output, "Go Version:")
}

func TestInvalidConfiguration(t *testing.T) {
	newTestEnv(t)
	viper.Set("wiki.space", "")

	_, err := executeCommand(rootCmd, "services")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "wiki.space is required")
}

func TestServicesCommand(t *testing.T) {
	newTestEnv(t)

	output, err := executeCommand(rootCmd, "services")
	require.NoError(t, err)
	assert.Contains(t, output, "Occurrence Search")
	assert.Contains(t, output, "Service - BLAST")
	assert.Contains(t, output, "3 services")
}

func TestReportCommand(t *testing.T) {
	newTestEnv(t)

	t.Run("yaml", func(t *testing.T) {
		output, err := executeCommand(rootCmd, "report", "--id", "1", "--format", "yaml")
		require.NoError(t, err)
		assert.Contains(t, output, "service_name: Occurrence Search")
		assert.Contains(t, output, "level: 3")
	})

	t.Run("html", func(t *testing.T) {
		output, err := executeCommand(rootCmd, "report", "--id", "2", "--format", "html")
		require.NoError(t, err)
		assert.Contains(t, output, "<h2>Documentation</h2>")
		assert.Contains(t, output, ">User Guide</a>")
	})

	t.Run("excluded", func(t *testing.T) {
		output, err := executeCommand(rootCmd, "report", "--id", "3", "--format", "summary")
		require.NoError(t, err)
		assert.Contains(t, output, "Service Unrelated Tool is excluded")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "report", "--id", "1", "--format", "pdf")
		assert.EqualError(t, err, `unknown format "pdf": want html, yaml or summary`)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "report")
		assert.EqualError(t, err, "--id is required")
	})
}

func TestSyncDryRun(t *testing.T) {
	env := newTestEnv(t)
	fixedRunID(t)

	output, err := executeCommand(rootCmd, "sync", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "svcwiki run 0f1e2d3c-run: 3 services, 2 included, 1 excluded; pages: 3 skipped")
	assert.Zero(t, env.wiki.stores)
}

func TestSyncPublishes(t *testing.T) {
	env := newTestEnv(t)
	fixedRunID(t)

	output, err := executeCommand(rootCmd, "sync", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "pages: 2 created, 1 updated")
	assert.Equal(t, 3, env.wiki.stores)

	page := env.wiki.page("Service - BLAST")
	require.NotNil(t, page)
	assert.Equal(t, "2", page["parentId"])
	// Updates keep the page where it is.
	assert.Equal(t, "0", env.wiki.page("Supported Services")["parentId"])

	// Pages whose wiki content is already identical are not stored again.
	output, err = executeCommand(rootCmd, "sync", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "pages: 3 unchanged")
	assert.Equal(t, 3, env.wiki.stores)

	// A page removed from the wiki is created again.
	env.wiki.remove("Service - BLAST")
	output, err = executeCommand(rootCmd, "sync", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "pages: 1 created, 2 unchanged")
	assert.Equal(t, 4, env.wiki.stores)
	require.NotNil(t, env.wiki.page("Service - BLAST"))

	output, err = executeCommand(rootCmd, "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "Service - Occurrence Search")
	assert.Contains(t, output, "0f1e2d3c")
}

func TestSyncConfirmIndex(t *testing.T) {
	env := newTestEnv(t)

	oldAskOne := askOne
	defer func() { askOne = oldAskOne }()
	var asked string
	askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		asked = p.(*survey.Confirm).Message
		*(response.(*bool)) = false
		return nil
	}

	_, err := executeCommand(rootCmd, "sync")
	require.ErrorIs(t, err, orchestrator.ErrIndexDeclined)
	assert.Equal(t, `Overwrite index page "Supported Services" with 2 entries?`, asked)
	assert.Equal(t, 2, env.wiki.stores, "service pages were published before the prompt")
}

func TestPageGetCommand(t *testing.T) {
	newTestEnv(t)

	output, err := executeCommand(rootCmd, "page", "get", "--title", "Home")
	require.NoError(t, err)
	assert.Contains(t, output, "ID:")
	assert.Contains(t, output, "1")
	assert.Contains(t, output, "Home")

	_, err = executeCommand(rootCmd, "page", "get", "--title", "Nowhere")
	assert.ErrorContains(t, err, "page not found")
}

func TestLedgerListEmpty(t *testing.T) {
	newTestEnv(t)

	output, err := executeCommand(rootCmd, "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No publishes recorded.")
}
