package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/arxiv"
	"github.com/pdiddy/paperwatch/internal/pipeline"
	"github.com/pdiddy/paperwatch/internal/relevance"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and rank recent arXiv papers",
	Long: `Fetch queries the arXiv API for papers submitted in a date window, ranks
them against a profile's keywords, and prints the top matches. Feishu is
never touched; use sync to persist results.

Run it with --profile to preview a researcher profile, or with --field and
friends for an ad-hoc query. Flags override the profile file.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("profile", "", "profile YAML file (sync_*.yaml)")
	fetchCmd.Flags().String("field", "", "research field expression (e.g. robotics, ai+cv, cs.RO)")
	fetchCmd.Flags().String("query", "", "free-text arXiv query ANDed with the category filter")
	fetchCmd.Flags().Int("days", 0, "days back from now (default 7)")
	fetchCmd.Flags().Int("max-results", 0, "maximum papers fetched (default 300)")
	fetchCmd.Flags().Float64("min-score", 0, "minimum relevance score kept (default 0.1)")
	fetchCmd.Flags().Bool("advanced", false, "score with the multi-signal breakdown")
	fetchCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	fetchCmd.Flags().Bool("no-rank", false, "print the feed order without scoring")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	profilePath, _ := cmd.Flags().GetString("profile")

	var profile pipeline.Profile
	if profilePath != "" {
		p, err := pipeline.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		profile = p
	} else {
		profile.ID = "adhoc"
	}

	// Flags override the profile file.
	if cmd.Flags().Changed("field") {
		profile.Search.Field, _ = cmd.Flags().GetString("field")
	}
	if cmd.Flags().Changed("query") {
		profile.Search.Query, _ = cmd.Flags().GetString("query")
	}
	if cmd.Flags().Changed("days") {
		profile.Search.Days, _ = cmd.Flags().GetInt("days")
	}
	if cmd.Flags().Changed("max-results") {
		profile.Search.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	if cmd.Flags().Changed("min-score") {
		v, _ := cmd.Flags().GetFloat64("min-score")
		profile.Search.MinScore = &v
	}
	if cmd.Flags().Changed("advanced") {
		profile.IntelligentMatching.Enabled, _ = cmd.Flags().GetBool("advanced")
	}
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	noRank, _ := cmd.Flags().GetBool("no-rank")
	harvester := arxiv.NewHarvester(arxivConfig())

	if noRank {
		categories := arxiv.ResolveFieldCategories(profile.Search.Field, os.Stderr)
		to := time.Now()
		from := to.AddDate(0, 0, -profile.Search.Days)
		papers, err := harvester.GetRange(context.Background(), profile.Search.Query,
			from, to, profile.Search.MaxResults, categories, os.Stderr)
		if err != nil {
			return err
		}
		return pipeline.Write(os.Stdout, format, pipeline.Unranked(papers), profile.Search.MaxDisplay)
	}

	deps := pipeline.Deps{
		Fetcher: harvester,
		Ranker:  relevance.NewRanker(relevance.DefaultDictionary()),
	}
	report, err := pipeline.Run(context.Background(), profile, deps, os.Stderr)
	if err != nil {
		return err
	}
	return pipeline.Write(os.Stdout, format, report.Ranked, profile.Search.MaxDisplay)
}
