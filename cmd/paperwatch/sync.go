// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/arxiv"
	"github.com/pdiddy/paperwatch/internal/feishu"
	"github.com/pdiddy/paperwatch/internal/ledger"
	"github.com/pdiddy/paperwatch/internal/pipeline"
	"github.com/pdiddy/paperwatch/internal/relevance"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full pipeline: fetch, rank, sync to Feishu, notify",
	Long: `Sync fetches recent papers for one profile (--profile) or every profile in
the profiles directory (--all), ranks them, inserts the qualifying new ones
into each profile's bitable table, and finishes a batch with one aggregate
digest to the bot's chats.

Tables are created on first sync and identified by name; papers already in
a table are never inserted again, so repeated runs are safe. Every run is
recorded in the local ledger (see paperwatch history).`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("profile", "", "profile YAML file (sync_*.yaml)")
	syncCmd.Flags().Bool("all", false, "discover and run every profile in the profiles directory")
	syncCmd.Flags().String("profiles-dir", "", "directory searched by --all (default \"profiles\")")
	syncCmd.Flags().Bool("dry-run", false, "fetch and rank only; write nothing to Feishu")
	syncCmd.Flags().Bool("no-notify", false, "suppress the digest notification")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	profilePath, _ := cmd.Flags().GetString("profile")
	all, _ := cmd.Flags().GetBool("all")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noNotify, _ := cmd.Flags().GetBool("no-notify")

	if all == (profilePath != "") {
		return fmt.Errorf("provide exactly one of --profile or --all")
	}

	var profiles []pipeline.Profile
	if all {
		dir, _ := cmd.Flags().GetString("profiles-dir")
		if dir == "" {
			dir = profilesDir()
		}
		discovered, err := pipeline.DiscoverProfiles(dir, os.Stderr)
		if err != nil {
			return err
		}
		profiles = discovered
	} else {
		p, err := pipeline.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		profiles = []pipeline.Profile{p}
	}

	deps := pipeline.Deps{
		Fetcher: arxiv.NewHarvester(arxivConfig()),
		Ranker:  relevance.NewRanker(relevance.DefaultDictionary()),
	}

	// Credentials are checked before any network call; a dry run needs none.
	if !dryRun {
		fcfg := feishuConfig()
		if err := feishu.ValidateCredentials(fcfg); err != nil {
			return err
		}
		client := feishu.NewClient(fcfg)
		deps.Syncer = feishu.NewSyncer(client)

		if ncfg := notifyConfig(); ncfg.Enabled && !noNotify {
			deps.Notifier = feishu.NewNotifier(client, ncfg)
		}
	}

	summary, batchErr := pipeline.RunBatch(context.Background(), profiles, deps, os.Stdout)

	recordRuns(summary.Reports)

	if batchErr != nil {
		return batchErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d profile(s) failed", summary.Failed)
	}
	return nil
}

// recordRuns writes the batch outcome to the run ledger. Ledger trouble
// is warned about but never fails the sync itself.
func recordRuns(reports []pipeline.RunReport) {
	if len(reports) == 0 {
		return
	}

	store, err := ledger.Open(ledgerPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger unavailable: %v\n", err)
		return
	}
	defer store.Close()

	for _, r := range reports {
		run := ledger.Run{
			Profile:      r.Profile,
			ResearchArea: r.ResearchArea,
			From:         r.From,
			To:           r.To,
			Fetched:      r.Fetched,
			Ranked:       len(r.Ranked),
			Excluded:     r.Stats.Excluded,
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
		}
		if r.Synced {
			run.Synced = r.Delta.NewCount
			run.TableTotal = r.Delta.TotalCount
			run.TableID = r.Delta.TableID
		}
		if top, ok := r.TopPaper(); ok {
			run.TopTitle = top.Paper.Title
			run.TopScore = top.Relevance.Score
		}
		if r.Err != nil {
			run.Error = r.Err.Error()
		}
		if _, err := store.Record(context.Background(), run); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run for %s: %v\n", r.Profile, err)
		}
	}
}
