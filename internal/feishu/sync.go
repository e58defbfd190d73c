// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// tableNameSuffix is appended to a profile's display name to form its
// bitable table name.
const tableNameSuffix = "论文表"

// TableName returns the bitable table name for a profile display name.
func TableName(displayName string) string {
	return displayName + tableNameSuffix
}

// SyncRequest carries one profile's ranked papers into Sync.
type SyncRequest struct {
	// ProfileID identifies the profile in progress lines and the delta.
	ProfileID string

	// DisplayName determines the target table name.
	DisplayName string

	// ResearchArea labels every inserted row.
	ResearchArea string

	// Threshold drops papers scoring below it before any write.
	Threshold float64

	Papers []types.ScoredPaper
}

// Syncer idempotently lands ranked papers in per-profile bitable
// tables. Rows already present, keyed by arXiv ID, are never touched:
// the sync only ever appends.
type Syncer struct {
	client *Client
}

// NewSyncer returns a Syncer over the given client.
func NewSyncer(client *Client) *Syncer {
	return &Syncer{client: client}
}

// Sync runs one profile sync: resolve (or create) the profile's table,
// load the IDs already present, and batch-insert the qualifying
// remainder. A rejected batch is logged and skipped; the returned delta
// reflects what the platform actually accepted.
func (s *Syncer) Sync(ctx context.Context, req SyncRequest, w io.Writer) (types.SyncDelta, error) {
	delta := types.SyncDelta{ProfileID: req.ProfileID, TableName: TableName(req.DisplayName)}

	// Surface dead credentials here, before any table work.
	if err := s.client.tokens.ForceRefresh(ctx); err != nil {
		return delta, fmt.Errorf("refreshing access token: %w", err)
	}

	tableID, err := s.client.FindTableByName(ctx, delta.TableName)
	switch {
	case errors.Is(err, ErrTableNotFound):
		fmt.Fprintf(w, "creating table %s\n", delta.TableName)
		tableID, err = s.client.CreateTable(ctx, delta.TableName, PaperTableFields())
		if err != nil {
			return delta, fmt.Errorf("creating table %s: %w", delta.TableName, err)
		}
	case err != nil:
		return delta, fmt.Errorf("resolving table %s: %w", delta.TableName, err)
	}
	delta.TableID = tableID

	known, err := s.knownIDs(ctx, tableID)
	if err != nil {
		return delta, fmt.Errorf("listing existing records: %w", err)
	}

	var rows []types.RowFields
	var fresh []types.ScoredPaper
	for _, sp := range req.Papers {
		if known[sp.Paper.ID] || sp.Relevance.Score < req.Threshold {
			continue
		}
		rows = append(rows, FormatRow(sp, req.ResearchArea))
		fresh = append(fresh, sp)
	}

	delta.TotalCount = len(known)
	if len(rows) == 0 {
		fmt.Fprintf(w, "%s: no new papers, table %s holds %d\n", req.ProfileID, delta.TableName, len(known))
		return delta, nil
	}

	batchSize := s.client.cfg.BatchSize
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		accepted, err := s.client.BatchCreateRecords(ctx, tableID, rows[start:end])
		if err != nil {
			fmt.Fprintf(w, "warning: rows %d-%d rejected: %v\n", start+1, end, err)
			if ctx.Err() != nil {
				return delta, ctx.Err()
			}
			continue
		}
		if accepted != end-start {
			fmt.Fprintf(w, "warning: rows %d-%d partially accepted (%d of %d)\n", start+1, end, accepted, end-start)
		}
		delta.NewCount += accepted
		delta.NewlyInserted = append(delta.NewlyInserted, fresh[start:start+accepted]...)
	}

	delta.TotalCount = len(known) + delta.NewCount
	fmt.Fprintf(w, "%s: %d new papers, table %s now holds %d\n",
		req.ProfileID, delta.NewCount, delta.TableName, delta.TotalCount)
	return delta, nil
}

// knownIDs scans the table for the arXiv IDs already present.
func (s *Syncer) knownIDs(ctx context.Context, tableID string) (map[string]bool, error) {
	records, err := s.client.ListRecords(ctx, tableID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(records))
	for _, rec := range records {
		if id := arxivIDOf(rec.Fields[colArxivID]); id != "" {
			known[id] = true
		}
	}
	return known, nil
}
