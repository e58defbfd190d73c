// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paperwatch/internal/arxiv"
	"github.com/pdiddy/paperwatch/internal/feishu"
	"github.com/pdiddy/paperwatch/internal/relevance"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// Fetcher pulls candidate papers for a date window.
type Fetcher interface {
	GetRange(ctx context.Context, freeText string, from, to time.Time, maxResults int, categories []string, w io.Writer) ([]types.Paper, error)
}

// Syncer lands ranked papers in the profile's bitable table.
type Syncer interface {
	Sync(ctx context.Context, req feishu.SyncRequest, w io.Writer) (types.SyncDelta, error)
}

// Notifier broadcasts the aggregate digest after a batch.
type Notifier interface {
	TableLink(tableID string) string
	Notify(ctx context.Context, deltas []types.SyncDelta, tableLinks map[string]string, w io.Writer) bool
}

// Deps carries the pipeline stages. A nil Syncer runs fetch and rank
// only; a nil Notifier suppresses the digest.
type Deps struct {
	Fetcher  Fetcher
	Ranker   *relevance.Ranker
	Syncer   Syncer
	Notifier Notifier

	// Now is a clock hook for tests; nil means time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RunReport is the outcome of one profile run. Ranked holds the kept
// papers, best first; nothing here persists past the run except through
// the sync delta and the ledger.
type RunReport struct {
	Profile      string
	DisplayName  string
	ResearchArea string
	From, To     time.Time

	Fetched int
	Ranked  []types.ScoredPaper
	Stats   relevance.RankStats

	// Delta is meaningful only when Synced is true.
	Delta  types.SyncDelta
	Synced bool

	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// TopPaper returns the best ranked paper; ok is false for an empty run.
func (r RunReport) TopPaper() (types.ScoredPaper, bool) {
	if len(r.Ranked) == 0 {
		return types.ScoredPaper{}, false
	}
	return r.Ranked[0], true
}

// Run executes fetch, rank, and (with a Syncer) sync for one profile,
// printing progress and a one-line summary to w.
func Run(ctx context.Context, profile Profile, deps Deps, w io.Writer) (RunReport, error) {
	report := RunReport{
		Profile:      profile.ID,
		DisplayName:  profile.DisplayName(),
		ResearchArea: profile.UserProfile.ResearchArea,
		StartedAt:    deps.now(),
	}
	report.To = report.StartedAt
	report.From = report.To.AddDate(0, 0, -profile.Search.Days)

	finish := func(err error) (RunReport, error) {
		report.FinishedAt = deps.now()
		report.Err = err
		return report, err
	}

	categories := arxiv.ResolveFieldCategories(profile.Search.Field, w)

	papers, err := deps.Fetcher.GetRange(ctx, profile.Search.Query, report.From, report.To,
		profile.Search.MaxResults, categories, w)
	if err != nil {
		return finish(fmt.Errorf("fetching papers: %w", err))
	}
	report.Fetched = len(papers)

	ranked, _, stats := deps.Ranker.FilterAndRank(papers, profile.KeywordSpec(), profile.RankOptions())
	report.Ranked = ranked
	report.Stats = stats

	fmt.Fprintf(w, "%s: fetched %d, kept %d (excluded %d, gated out %d)\n",
		profile.ID, stats.Total, stats.Ranked, stats.Excluded, stats.RequiredFiltered)

	if deps.Syncer == nil {
		return finish(nil)
	}

	delta, err := deps.Syncer.Sync(ctx, feishu.SyncRequest{
		ProfileID:    profile.ID,
		DisplayName:  profile.DisplayName(),
		ResearchArea: profile.UserProfile.ResearchArea,
		Threshold:    profile.Search.SyncThreshold,
		Papers:       ranked,
	}, w)
	if err != nil {
		return finish(fmt.Errorf("syncing to feishu: %w", err))
	}
	report.Delta = delta
	report.Synced = true
	return finish(nil)
}

// BatchSummary aggregates a multi-profile run.
type BatchSummary struct {
	Reports   []RunReport
	Succeeded int
	Failed    int
	TotalNew  int
	Notified  bool
}

// RunBatch runs every profile in sequence with per-profile
// notifications suppressed, then sends one aggregate digest covering
// the whole batch. A failed profile is reported and skipped; only a
// cancelled context stops the batch early.
func RunBatch(ctx context.Context, profiles []Profile, deps Deps, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary
	var deltas []types.SyncDelta
	wantDigest := false

	for i, profile := range profiles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		report, err := Run(ctx, profile, deps, w)
		summary.Reports = append(summary.Reports, report)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "warning: profile %s failed: %v\n", profile.ID, err)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}
		summary.Succeeded++
		if report.Synced {
			summary.TotalNew += report.Delta.NewCount
			deltas = append(deltas, report.Delta)
			if profile.Feishu.ChatNotification.Enabled {
				wantDigest = true
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d profiles, %d succeeded, %d failed, %d new papers\n",
		len(profiles), summary.Succeeded, summary.Failed, summary.TotalNew)

	if deps.Notifier != nil && wantDigest && len(deltas) > 0 {
		links := make(map[string]string, len(deltas))
		for _, d := range deltas {
			links[d.ProfileID] = deps.Notifier.TableLink(d.TableID)
		}
		summary.Notified = deps.Notifier.Notify(ctx, deltas, links, w)
	}
	return summary, nil
}
