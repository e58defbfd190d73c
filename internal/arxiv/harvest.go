// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// pageSizeLadder is the descending sequence of page sizes the harvester
// tries. The upstream API intermittently serves runs of empty pages for
// large windows; smaller pages work around it.
var pageSizeLadder = []int{500, 250, 100, 50, 10}

// emptyStreakLimit is how many consecutive empty pages, before any record
// has been produced, abort the current page size.
const emptyStreakLimit = 3

const (
	defaultMaxDaysPerBatch  = 7
	defaultMinBatchInterval = 1 * time.Second
)

// Harvester fetches date windows of papers, splitting wide windows into
// rate-limited sub-windows and deduplicating across them.
type Harvester struct {
	client *Client
	cfg    types.ArxivConfig
}

// NewHarvester returns a Harvester over a fresh Client.
func NewHarvester(cfg types.ArxivConfig) *Harvester {
	if cfg.MaxDaysPerBatch <= 0 {
		cfg.MaxDaysPerBatch = defaultMaxDaysPerBatch
	}
	if cfg.MinBatchInterval <= 0 {
		cfg.MinBatchInterval = defaultMinBatchInterval
	}
	return &Harvester{client: NewClient(cfg), cfg: cfg}
}

// GetRecent fetches papers submitted in the trailing days-long window.
// freeText, when non-empty, is ANDed into every window query.
func (h *Harvester) GetRecent(ctx context.Context, freeText string, days, maxResults int, categories []string, w io.Writer) ([]types.Paper, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	return h.GetRange(ctx, freeText, from, to, maxResults, categories, w)
}

// GetRange fetches papers submitted within [from, to], newest first.
// Windows wider than MaxDaysPerBatch are split into consecutive
// sub-windows with MinBatchInterval spacing; results are deduplicated by
// paper ID across sub-windows, first occurrence winning. A sub-window
// that fails after retries is logged and skipped.
func (h *Harvester) GetRange(ctx context.Context, freeText string, from, to time.Time, maxResults int, categories []string, w io.Writer) ([]types.Paper, error) {
	windows := splitWindows(from, to, h.cfg.MaxDaysPerBatch, h.cfg.BatchOverlapDays)

	seen := make(map[string]bool)
	var all []types.Paper

	for i, win := range windows {
		if i > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(h.cfg.MinBatchInterval):
			}
		}

		query := BuildQuery(freeText, categories, win.from, win.to)
		papers, err := h.fetchWindow(ctx, query, maxResults, w)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return all, err
			}
			fmt.Fprintf(w, "warning: window %s..%s failed: %v\n",
				win.from.Format("2006-01-02"), win.to.Format("2006-01-02"), err)
			continue
		}

		added := 0
		for _, p := range papers {
			if !seen[p.ID] {
				seen[p.ID] = true
				all = append(all, p)
				added++
			}
		}
		if len(windows) > 1 {
			fmt.Fprintf(w, "window %s..%s: %d papers (%d new)\n",
				win.from.Format("2006-01-02"), win.to.Format("2006-01-02"), len(papers), added)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	if maxResults > 0 && len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

// fetchWindow walks the page-size ladder for one sub-window. The first
// size that yields a record is used to completion; a size is abandoned
// after emptyStreakLimit consecutive empty pages. All sizes failing is an
// empty result, not an error.
func (h *Harvester) fetchWindow(ctx context.Context, query string, maxResults int, w io.Writer) ([]types.Paper, error) {
	for i, size := range pageSizeLadder {
		papers, produced, err := h.fetchWithSize(ctx, query, size, maxResults, w)
		if err != nil {
			return nil, err
		}
		if produced {
			return papers, nil
		}
		if i+1 < len(pageSizeLadder) {
			fmt.Fprintf(w, "warning: no records at page size %d, trying %d\n", size, pageSizeLadder[i+1])
		}
	}
	return nil, nil
}

// fetchWithSize pages through the window at one page size. produced is
// false when the size was abandoned on an empty streak.
func (h *Harvester) fetchWithSize(ctx context.Context, query string, size, maxResults int, w io.Writer) (papers []types.Paper, produced bool, err error) {
	start := 0
	emptyStreak := 0

	for {
		req := size
		if maxResults > 0 && maxResults-len(papers) < req {
			req = maxResults - len(papers)
		}
		if req <= 0 {
			return papers, true, nil
		}

		page, _, err := h.client.fetchPage(ctx, query, start, req, w)
		if err != nil {
			return nil, false, err
		}

		if len(page) == 0 {
			if len(papers) == 0 {
				emptyStreak++
				if emptyStreak >= emptyStreakLimit {
					return nil, false, nil
				}
				start += req
				continue
			}
			return papers, true, nil
		}

		papers = append(papers, page...)
		if maxResults > 0 && len(papers) >= maxResults {
			return papers[:maxResults], true, nil
		}
		if len(page) < req {
			// Short page: end of the result stream.
			return papers, true, nil
		}
		start += req
	}
}

// window is one inclusive date sub-range of a harvest.
type window struct {
	from, to time.Time
}

// splitWindows cuts [from, to] into consecutive windows of at most maxDays
// calendar days. overlap > 0 starts each subsequent window that many days
// before its predecessor ended.
func splitWindows(from, to time.Time, maxDays, overlap int) []window {
	if maxDays <= 0 {
		maxDays = defaultMaxDaysPerBatch
	}
	if to.Before(from) {
		return nil
	}

	var ws []window
	start := from
	for !start.After(to) {
		end := start.AddDate(0, 0, maxDays-1)
		if end.After(to) {
			end = to
		}
		ws = append(ws, window{from: start, to: end})
		if !end.Before(to) {
			break
		}

		next := end.AddDate(0, 0, 1-overlap)
		if !next.After(start) {
			// Guarantee forward progress under large overlaps.
			next = start.AddDate(0, 0, 1)
		}
		start = next
	}
	return ws
}
