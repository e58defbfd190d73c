// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// paperView is the flattened shape FormatJSON and FormatYAML emit for
// scripted consumers.
type paperView struct {
	Rank      int      `json:"rank" yaml:"rank"`
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Score     float64  `json:"score" yaml:"score"`
	Published string   `json:"published,omitempty" yaml:"published,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Matched   []string `json:"matched,omitempty" yaml:"matched,omitempty"`
	Required  []string `json:"required,omitempty" yaml:"required,omitempty"`
}

// Unranked wraps papers for display without scoring, preserving feed
// order. Used by fetch-only runs that skip the relevance engine.
func Unranked(papers []types.Paper) []types.ScoredPaper {
	out := make([]types.ScoredPaper, len(papers))
	for i, p := range papers {
		out[i] = types.ScoredPaper{Paper: p}
	}
	return out
}

func paperViews(ranked []types.ScoredPaper, maxDisplay int) []paperView {
	if maxDisplay > 0 && len(ranked) > maxDisplay {
		ranked = ranked[:maxDisplay]
	}
	views := make([]paperView, 0, len(ranked))
	for i, sp := range ranked {
		v := paperView{
			Rank:     i + 1,
			ID:       sp.Paper.ID,
			Title:    strings.TrimSpace(sp.Paper.Title),
			Score:    sp.Relevance.Score,
			URL:      sp.Paper.EntryURL,
			Authors:  sp.Paper.Authors,
			Matched:  sp.Relevance.MatchedInterest,
			Required: sp.RequiredMatches,
		}
		if !sp.Paper.Published.IsZero() {
			v.Published = sp.Paper.Published.Format(time.DateOnly)
		}
		views = append(views, v)
	}
	return views
}

// Write renders the ranked papers in the named format: "table" for
// reading, "json" or "yaml" for scripting.
func Write(w io.Writer, format string, ranked []types.ScoredPaper, maxDisplay int) error {
	switch format {
	case "", "table":
		FormatTable(w, ranked, maxDisplay)
		return nil
	case "json":
		return FormatJSON(w, ranked, maxDisplay)
	case "yaml":
		return FormatYAML(w, ranked, maxDisplay)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

// FormatTable prints the top maxDisplay papers as an aligned listing.
func FormatTable(w io.Writer, ranked []types.ScoredPaper, maxDisplay int) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No papers matched.")
		return
	}

	shown := ranked
	if maxDisplay > 0 && len(shown) > maxDisplay {
		shown = shown[:maxDisplay]
	}

	fmt.Fprintf(w, "%-4s  %-6s  %-12s  %-58s  %s\n", "Rank", "Score", "Date", "Title", "Matched")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, sp := range shown {
		title := strings.TrimSpace(sp.Paper.Title)
		if len(title) > 58 {
			title = title[:55] + "..."
		}
		date := ""
		if !sp.Paper.Published.IsZero() {
			date = sp.Paper.Published.Format(time.DateOnly)
		}
		matched := strings.Join(sp.Relevance.MatchedInterest, ", ")
		if len(matched) > 30 {
			matched = matched[:27] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-6.2f  %-12s  %-58s  %s\n", i+1, sp.Relevance.Score, date, title, matched)
	}

	fmt.Fprintf(w, "\n%d of %d papers shown\n", len(shown), len(ranked))
}

// FormatJSON writes the top maxDisplay papers as indented JSON.
func FormatJSON(w io.Writer, ranked []types.ScoredPaper, maxDisplay int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(paperViews(ranked, maxDisplay))
}

// FormatYAML writes the top maxDisplay papers as a YAML document.
func FormatYAML(w io.Writer, ranked []types.ScoredPaper, maxDisplay int) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(paperViews(ranked, maxDisplay))
}
