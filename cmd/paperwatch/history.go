// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs from the local ledger",
	Long: `History lists recent runs recorded by sync: the fetch window, how many
papers were fetched, ranked, and inserted, and the top-scoring paper.
The ledger is local operational history; the bitable stays the store
of record.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs shown")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := ledger.Open(ledgerPath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.History(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-18s  %-7s  %-6s  %-6s  %-6s  %s\n",
		"Started", "Profile", "Fetched", "Ranked", "Synced", "Total", "Top paper")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range runs {
		profile := r.Profile
		if len(profile) > 18 {
			profile = profile[:15] + "..."
		}
		status := r.TopTitle
		if r.Failed() {
			status = "failed: " + r.Error
		}
		if len(status) > 40 {
			status = status[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-16s  %-18s  %-7d  %-6d  %-6d  %-6d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), profile,
			r.Fetched, r.Ranked, r.Synced, r.TableTotal, status)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}
