package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"svcwiki/internal/cmdutils"
	"svcwiki/internal/ui"
	"svcwiki/internal/utils"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the publish ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent publishes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := cmdutils.GetConfig()
		if err != nil {
			return err
		}
		store, err := cmdutils.GetStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		publishes, err := store.ListPublished(limit)
		if err != nil {
			return fmt.Errorf("failed to list publishes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(publishes) == 0 {
			fmt.Fprintln(out, "No publishes recorded.")
			return nil
		}
		now := time.Now()
		rows := make([][]string, 0, len(publishes))
		for _, p := range publishes {
			rows = append(rows, []string{
				utils.FormatAge(p.PublishedAt, now),
				utils.Truncate(p.Title, 50),
				p.Action,
				p.PageID,
				shortID(p.RunID),
			})
		}
		fmt.Fprintln(out, ui.Table([]string{"When", "Title", "Action", "Page ID", "Run"}, rows))
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	ledgerListCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")

	ledgerCmd.AddCommand(ledgerListCmd)
	rootCmd.AddCommand(ledgerCmd)
}
