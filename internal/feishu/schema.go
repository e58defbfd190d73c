// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"math"
	"strings"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// Bitable column type codes used by the paper table.
const (
	fieldTypeText        = 1
	fieldTypeNumber      = 2
	fieldTypeMultiSelect = 4
	fieldTypeDate        = 5
	fieldTypeHyperlink   = 15
	fieldTypeCreatedTime = 1001
)

// colArxivID is the dedup column; its name must match the created
// schema and the RowFields JSON tags exactly.
const colArxivID = "ArXiv ID"

// Caps keeping rows inside bitable cell limits.
const (
	maxAbstractChars = 2000
	maxAuthors       = 10
	maxCategories    = 10
	maxKeywords      = 10
)

// PaperTableFields returns the column schema of a per-profile paper
// table, in wire order. "Sync Time" fills itself server-side on insert.
func PaperTableFields() []TableField {
	dateProperty := func() map[string]any {
		return map[string]any{"date_formatter": "yyyy/MM/dd", "auto_fill": false}
	}
	return []TableField{
		{FieldName: colArxivID, Type: fieldTypeHyperlink},
		{FieldName: "Title", Type: fieldTypeText},
		{FieldName: "Authors", Type: fieldTypeMultiSelect},
		{FieldName: "Abstract", Type: fieldTypeText},
		{FieldName: "Categories", Type: fieldTypeMultiSelect},
		{FieldName: "Matched Keywords", Type: fieldTypeMultiSelect},
		{FieldName: "Required Matches", Type: fieldTypeMultiSelect},
		{FieldName: "Relevance Score", Type: fieldTypeNumber, Property: map[string]any{"formatter": "0.00"}},
		{FieldName: "Research Area", Type: fieldTypeMultiSelect},
		{FieldName: "PDF Link", Type: fieldTypeHyperlink},
		{FieldName: "Published Date", Type: fieldTypeDate, Property: dateProperty()},
		{FieldName: "Updated Date", Type: fieldTypeDate, Property: dateProperty()},
		{FieldName: "Sync Time", Type: fieldTypeCreatedTime},
	}
}

// FormatRow renders one scored paper as a bitable row. The mapping is
// stable: formatting the same paper twice yields identical fields, so
// replays produce byte-identical writes.
func FormatRow(sp types.ScoredPaper, researchArea string) types.RowFields {
	p := sp.Paper
	entry := p.EntryURL
	if entry == "" {
		entry = "https://arxiv.org/abs/" + p.ID
	}

	row := types.RowFields{
		ArxivID:         types.Hyperlink{Text: p.ID, Link: entry},
		Title:           strings.TrimSpace(p.Title),
		Authors:         capList(p.Authors, maxAuthors),
		Abstract:        truncateRunes(strings.TrimSpace(p.Abstract), maxAbstractChars),
		Categories:      capList(p.Categories, maxCategories),
		MatchedKeywords: capList(sp.Relevance.MatchedInterest, maxKeywords),
		RequiredMatches: capList(sp.RequiredMatches, maxKeywords),
		RelevanceScore:  round2(sp.Relevance.Score),
	}
	if researchArea = strings.TrimSpace(researchArea); researchArea != "" {
		row.ResearchArea = []string{researchArea}
	}
	if p.PDFURL != "" {
		row.PDFLink = &types.Hyperlink{Text: "PDF", Link: p.PDFURL}
	}
	if !p.Published.IsZero() {
		row.PublishedDate = p.Published.UnixMilli()
	}
	if !p.Updated.IsZero() {
		row.UpdatedDate = p.Updated.UnixMilli()
	}
	return row
}

// arxivIDOf extracts the dedup key from an ArXiv ID cell regardless of
// representation: hyperlink cells carry the ID in their text part,
// rows written by older tooling may hold a plain string.
func arxivIDOf(cell any) string {
	switch v := cell.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// capList trims, drops blanks, and keeps at most max entries.
func capList(list []string, max int) []string {
	var out []string
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}

// truncateRunes cuts s to at most max runes, marking the cut with an
// ellipsis inside the limit.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
