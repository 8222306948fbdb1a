package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"svcwiki/internal/cmdutils"
	"svcwiki/internal/report"
	"svcwiki/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the documentation report of one service",
	Long: `Build the documentation report of one service without publishing it.

Formats:
  html     the wiki page body
  yaml     outcome, level and action items
  summary  a terminal rendering of the action items`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt("id")
		format, _ := cmd.Flags().GetString("format")
		if id <= 0 {
			return fmt.Errorf("--id is required")
		}
		switch format {
		case "html", "yaml", "summary":
		default:
			return fmt.Errorf("unknown format %q: want html, yaml or summary", format)
		}

		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		client, err := cmdutils.GetCatalogClient(ctx, cfg)
		if err != nil {
			return err
		}
		svc, err := client.GetServiceByID(ctx, id)
		if err != nil {
			return err
		}
		builder, err := cmdutils.GetReportBuilder(cfg, cmdutils.GetLinkChecker(cfg, nil))
		if err != nil {
			return err
		}
		outcome, err := builder.Build(ctx, svc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch o := outcome.(type) {
		case *report.Excluded:
			if format == "yaml" {
				return yaml.NewEncoder(out).Encode(o)
			}
			fmt.Fprintf(out, "Service %s is excluded: %s\n", o.ServiceName, o.Reason)
		case *report.Included:
			switch format {
			case "html":
				fmt.Fprintln(out, o.HTML)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(o)
			case "summary":
				fmt.Fprint(out, ui.RenderMarkdown(report.Markdown(o), 100))
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().Int("id", 0, "Catalogue ID of the service")
	reportCmd.Flags().StringP("format", "f", "summary", "Output format: html, yaml or summary")

	rootCmd.AddCommand(reportCmd)
}
