package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/feishu"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the configured bitable base",
	Long: `Tables lists every table in the bitable base paperwatch syncs into,
with IDs usable in deep links. Paper tables created by sync are named
after the researcher with a 论文表 suffix.`,
	RunE: runTables,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg := feishuConfig()
	if err := feishu.ValidateCredentials(cfg); err != nil {
		return err
	}

	client := feishu.NewClient(cfg)
	tables, err := client.ListTables(context.Background())
	if err != nil {
		return err
	}

	if len(tables) == 0 {
		fmt.Println("No tables found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-9s  %s\n", "Table ID", "Revision", "Name")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
	for _, t := range tables {
		fmt.Fprintf(os.Stdout, "%-24s  %-9d  %s\n", t.TableID, t.Revision, t.Name)
	}
	fmt.Fprintf(os.Stdout, "\n%d tables\n", len(tables))
	return nil
}
