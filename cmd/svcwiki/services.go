package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcwiki/internal/cmdutils"
	"svcwiki/internal/ui"
	"svcwiki/internal/utils"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services of the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}
		client, err := cmdutils.GetCatalogClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		services, err := client.ListServices(cmd.Context())
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(services))
		for _, svc := range services {
			rows = append(rows, []string{svc.ID(), utils.Truncate(svc.Name(), 50), cfg.Wiki.Title(svc.ID(), svc.Name())})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Table([]string{"ID", "Name", "Wiki page"}, rows))
		fmt.Fprintln(out, ui.Muted(fmt.Sprintf("%d services", len(services))))
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalogue categories with their top-level parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, err := cmdutils.GetCatalogClient(ctx, cfg)
		if err != nil {
			return err
		}
		categories, err := client.SortedCategories(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(categories))
		for _, cat := range categories {
			top, err := client.TopLevelCategory(ctx, cat.URL)
			if err != nil {
				return err
			}
			rows = append(rows, []string{cat.Name, top.Name})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"Category", "Top level"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(categoriesCmd)
}
