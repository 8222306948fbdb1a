package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcwiki/internal/cmdutils"
	"svcwiki/internal/ui"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Inspect wiki pages",
}

var pageGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the metadata of a wiki page",
	RunE: func(cmd *cobra.Command, args []string) error {
		space, _ := cmd.Flags().GetString("space")
		title, _ := cmd.Flags().GetString("title")
		showContent, _ := cmd.Flags().GetBool("content")
		if title == "" {
			return fmt.Errorf("--title is required")
		}

		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}
		if space == "" {
			space = cfg.Wiki.Space
		}
		wiki, err := cmdutils.GetWikiClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		page, err := wiki.GetPage(cmd.Context(), space, title)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.KeyValues([][2]string{
			{"ID", page.ID},
			{"Space", page.Space},
			{"Title", page.Title},
			{"Version", page.Version},
			{"Parent", page.ParentID},
		}))
		if showContent {
			fmt.Fprintln(out, page.Content)
		}
		return nil
	},
}

func init() {
	pageGetCmd.Flags().String("space", "", "Wiki space (default wiki.space)")
	pageGetCmd.Flags().String("title", "", "Page title")
	pageGetCmd.Flags().Bool("content", false, "Print the page content")

	pageCmd.AddCommand(pageGetCmd)
	rootCmd.AddCommand(pageCmd)
}
