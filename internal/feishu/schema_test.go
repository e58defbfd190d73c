// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func scoredPaper() types.ScoredPaper {
	return types.ScoredPaper{
		Paper: types.Paper{
			ID:         "2401.12345",
			Title:      "  Mobile Manipulation with Whole-Body Control  ",
			Abstract:   "We present a unified controller.",
			Authors:    []string{"Ada One", "Bob Two"},
			Categories: []string{"cs.RO", "cs.AI"},
			Published:  time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC),
			Updated:    time.Date(2024, 1, 21, 9, 30, 0, 0, time.UTC),
			EntryURL:   "https://arxiv.org/abs/2401.12345v1",
			PDFURL:     "https://arxiv.org/pdf/2401.12345v1",
		},
		Relevance: types.RelevanceResult{
			Score:           2.3456,
			MatchedInterest: []string{"mobile manipulation", "whole-body control"},
		},
		RequiredMatches: []string{"manipulation"},
	}
}

func TestFormatRowMapsFields(t *testing.T) {
	row := FormatRow(scoredPaper(), "具身智能")

	if row.ArxivID.Text != "2401.12345" || row.ArxivID.Link != "https://arxiv.org/abs/2401.12345v1" {
		t.Errorf("ArxivID = %+v", row.ArxivID)
	}
	if row.Title != "Mobile Manipulation with Whole-Body Control" {
		t.Errorf("Title = %q, want trimmed", row.Title)
	}
	if row.RelevanceScore != 2.35 {
		t.Errorf("RelevanceScore = %v, want 2.35", row.RelevanceScore)
	}
	if !reflect.DeepEqual(row.ResearchArea, []string{"具身智能"}) {
		t.Errorf("ResearchArea = %v", row.ResearchArea)
	}
	if row.PDFLink == nil || row.PDFLink.Text != "PDF" || row.PDFLink.Link != "https://arxiv.org/pdf/2401.12345v1" {
		t.Errorf("PDFLink = %+v", row.PDFLink)
	}
	if want := int64(1705752000000); row.PublishedDate != want {
		t.Errorf("PublishedDate = %d, want %d", row.PublishedDate, want)
	}
	if row.UpdatedDate <= row.PublishedDate {
		t.Errorf("UpdatedDate = %d, want after PublishedDate", row.UpdatedDate)
	}
	if !reflect.DeepEqual(row.RequiredMatches, []string{"manipulation"}) {
		t.Errorf("RequiredMatches = %v", row.RequiredMatches)
	}
}

func TestFormatRowEntryURLFallback(t *testing.T) {
	sp := scoredPaper()
	sp.Paper.EntryURL = ""
	sp.Paper.PDFURL = ""

	row := FormatRow(sp, "")
	if row.ArxivID.Link != "https://arxiv.org/abs/2401.12345" {
		t.Errorf("ArxivID.Link = %q, want the abs fallback", row.ArxivID.Link)
	}
	if row.PDFLink != nil {
		t.Errorf("PDFLink = %+v, want nil without a PDF URL", row.PDFLink)
	}
	if row.ResearchArea != nil {
		t.Errorf("ResearchArea = %v, want omitted", row.ResearchArea)
	}
}

func TestFormatRowCapsListsAndAbstract(t *testing.T) {
	sp := scoredPaper()
	for i := 0; i < 15; i++ {
		sp.Paper.Authors = append(sp.Paper.Authors, "Extra Author")
		sp.Paper.Categories = append(sp.Paper.Categories, "cs.LG")
		sp.Relevance.MatchedInterest = append(sp.Relevance.MatchedInterest, "kw")
	}
	sp.Paper.Abstract = strings.Repeat("甲", 2500)

	row := FormatRow(sp, "")
	if len(row.Authors) != maxAuthors {
		t.Errorf("len(Authors) = %d, want %d", len(row.Authors), maxAuthors)
	}
	if len(row.Categories) != maxCategories {
		t.Errorf("len(Categories) = %d, want %d", len(row.Categories), maxCategories)
	}
	if len(row.MatchedKeywords) != maxKeywords {
		t.Errorf("len(MatchedKeywords) = %d, want %d", len(row.MatchedKeywords), maxKeywords)
	}
	if got := len([]rune(row.Abstract)); got != maxAbstractChars {
		t.Errorf("abstract runes = %d, want %d", got, maxAbstractChars)
	}
	if !strings.HasSuffix(row.Abstract, "...") {
		t.Errorf("truncated abstract should end with an ellipsis")
	}
}

func TestFormatRowIsStable(t *testing.T) {
	sp := scoredPaper()

	first := FormatRow(sp, "具身智能")
	second := FormatRow(sp, "具身智能")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("FormatRow not deterministic:\n%+v\n%+v", first, second)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("serialized rows differ:\n%s\n%s", a, b)
	}
}

func TestRowFieldTagsMatchSchema(t *testing.T) {
	schema := make(map[string]bool)
	for _, f := range PaperTableFields() {
		schema[f.FieldName] = true
	}

	rt := reflect.TypeOf(types.RowFields{})
	for i := 0; i < rt.NumField(); i++ {
		tag := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
		if !schema[tag] {
			t.Errorf("RowFields field %s maps to %q, which the table schema does not define", rt.Field(i).Name, tag)
		}
	}
}

func TestArxivIDOf(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want string
	}{
		{"hyperlink cell", map[string]any{"text": "2401.00001", "link": "https://arxiv.org/abs/2401.00001"}, "2401.00001"},
		{"plain string", "  2401.00002 ", "2401.00002"},
		{"missing text member", map[string]any{"link": "x"}, ""},
		{"nil cell", nil, ""},
		{"unexpected type", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arxivIDOf(tt.cell); got != tt.want {
				t.Errorf("arxivIDOf(%v) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}
