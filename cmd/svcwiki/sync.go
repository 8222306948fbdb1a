package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"svcwiki/internal/cmdutils"
	"svcwiki/internal/db"
	"svcwiki/internal/metrics"
	"svcwiki/internal/orchestrator"
	"svcwiki/internal/report"
	"svcwiki/internal/ui"
)

var askOne = survey.AskOne

var newRunID = uuid.NewString

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish a report page for every service and refresh the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")
		indexOnly, _ := cmd.Flags().GetBool("index-only")
		yes, _ := cmd.Flags().GetBool("yes")

		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := newRunID()
		logger := slog.Default().With("run_id", runID)
		m := metrics.NewMetrics()

		catalogClient, err := cmdutils.GetCatalogClient(ctx, cfg)
		if err != nil {
			return err
		}
		builder, err := cmdutils.GetReportBuilder(cfg, cmdutils.GetLinkChecker(cfg, m))
		if err != nil {
			return err
		}

		runner := &orchestrator.Runner{
			Catalog:  catalogClient,
			Reports:  builder,
			Metrics:  m,
			Notifier: cmdutils.GetNotifier(cfg),
			Logger:   logger,
			Options: orchestrator.Options{
				RunID:              runID,
				Space:              cfg.Wiki.Space,
				ParentTitle:        cfg.Wiki.ParentTitle,
				IndexParentTitle:   cfg.Wiki.IndexParentTitle,
				PageTitle:          cfg.Wiki.Title,
				Index:              report.IndexOptions{Columns: cfg.Index.Columns, FooterHTML: cfg.Index.FooterHTML},
				UpdateServicePages: cfg.Sync.UpdateServicePages,
				DryRun:             dryRun,
				IndexOnly:          indexOnly,
			},
		}
		for _, p := range cfg.Index.ExtraPages {
			runner.Options.ExtraPages = append(runner.Options.ExtraPages, report.IndexEntry{Name: p.Name, Title: p.Title})
		}

		if !dryRun {
			wiki, err := cmdutils.GetWikiClient(ctx, cfg)
			if err != nil {
				return err
			}
			wiki.Force = force
			runner.Wiki = wiki

			store, err := cmdutils.GetStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			runner.Store = store

			if !yes {
				runner.Options.ConfirmIndex = confirm
			}
		} else {
			runner.Store = db.NoopStore{}
		}

		summary, runErr := runner.Run(ctx)

		if cfg.Metrics.PushgatewayURL != "" {
			pushCtx := context.WithoutCancel(ctx)
			if err := m.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
				logger.Warn("Failed to push metrics", "error", err)
			}
		}

		printSummary(cmd, summary)
		return runErr
	},
}

func confirm(prompt string) (bool, error) {
	ok := false
	if err := askOne(&survey.Confirm{Message: prompt, Default: true}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func printSummary(cmd *cobra.Command, summary *orchestrator.Summary) {
	if summary == nil {
		return
	}
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Pages))
	for _, p := range summary.Pages {
		level := ""
		if p.Level != nil {
			level = ui.Level(*p.Level)
		}
		rows = append(rows, []string{p.Title, string(p.Action), level, p.PageID})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, ui.Table([]string{"Page", "Action", "Level", "Page ID"}, rows))
	}
	fmt.Fprintln(out, summary.String())
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Build every report but publish nothing")
	syncCmd.Flags().Bool("force", false, "Store pages even if the wiki already has identical content")
	syncCmd.Flags().Bool("index-only", false, "Only publish the index page")
	syncCmd.Flags().BoolP("yes", "y", false, "Do not ask before overwriting the index page")

	rootCmd.AddCommand(syncCmd)
}
