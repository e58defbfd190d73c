// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func rankedIDs(papers []types.ScoredPaper) []string {
	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.Paper.ID
	}
	return ids
}

func TestFilterAndRankWildcardOrdering(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	older := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	papers := []types.Paper{
		{ID: "b", Title: "Beta", Published: older},
		{ID: "a", Title: "Alpha", Published: older},
		{ID: "c", Title: "Gamma", Published: newer},
	}
	spec := types.KeywordSpec{Interest: []string{"*"}}

	ranked, excluded, stats := r.FilterAndRank(papers, spec, RankOptions{})
	if excluded != nil {
		t.Fatalf("excluded = %v, want none", excluded)
	}
	// Equal scores tie-break on newer publication date, then id.
	if got := rankedIDs(ranked); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("order = %v, want [c a b]", got)
	}
	want := RankStats{Total: 3, Ranked: 3, MaxScore: 1.0, MinScore: 1.0, AvgScore: 1.0}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilterAndRankMinScore(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	papers := []types.Paper{{ID: "p1", Title: "Robot Grasping"}}
	spec := types.KeywordSpec{Interest: []string{"robot"}}

	// Papers below the threshold vanish without an excluded entry.
	ranked, excluded, stats := r.FilterAndRank(papers, spec, RankOptions{MinScore: 1.01})
	if len(ranked) != 0 || len(excluded) != 0 {
		t.Fatalf("ranked = %v, excluded = %v, want silent drop", ranked, excluded)
	}
	if want := (RankStats{Total: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	// A score exactly at the threshold survives.
	ranked, _, _ = r.FilterAndRank(papers, spec, RankOptions{MinScore: 1.0})
	if len(ranked) != 1 {
		t.Fatalf("ranked = %v, want the boundary paper kept", ranked)
	}
	if math.Abs(ranked[0].Relevance.Score-1.0) > 1e-9 {
		t.Errorf("Score = %v, want 1.0", ranked[0].Relevance.Score)
	}
}

func TestFilterAndRankRequiredGate(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	papers := []types.Paper{
		{ID: "p1", Title: "Robot Manipulation"},
		{ID: "p2", Title: "Quantum Chemistry"},
	}
	spec := types.KeywordSpec{
		Interest: []string{"robot"},
		Required: types.RequiredSpec{
			Enabled:             true,
			Keywords:            []string{"manipulation"},
			FuzzyMatch:          true,
			SimilarityThreshold: 0.8,
		},
	}

	ranked, excluded, stats := r.FilterAndRank(papers, spec, RankOptions{})
	if len(ranked) != 1 || ranked[0].Paper.ID != "p1" {
		t.Fatalf("ranked = %v, want only p1", rankedIDs(ranked))
	}
	if !reflect.DeepEqual(ranked[0].RequiredMatches, []string{"manipulation"}) {
		t.Errorf("RequiredMatches = %v, want [manipulation]", ranked[0].RequiredMatches)
	}
	if len(excluded) != 1 || excluded[0].Paper.ID != "p2" {
		t.Fatalf("excluded = %v, want only p2", excluded)
	}
	if !reflect.DeepEqual(excluded[0].Reason, []string{"required-missed"}) {
		t.Errorf("Reason = %v, want [required-missed]", excluded[0].Reason)
	}
	want := RankStats{Total: 2, Ranked: 1, Excluded: 1, RequiredFiltered: 1, MaxScore: 1.0, MinScore: 1.0, AvgScore: 1.0}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilterAndRankExcludeOnly(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	papers := []types.Paper{
		{ID: "p1", Title: "Robot Grasping"},
		{ID: "p2", Title: "A Survey of Robots"},
		{ID: "p3", Title: "Vision Systems"},
	}
	spec := types.KeywordSpec{Exclude: []string{"survey"}}

	ranked, excluded, stats := r.FilterAndRank(papers, spec, RankOptions{})
	// Survivors keep their input order and carry no scores.
	if got := rankedIDs(ranked); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Errorf("order = %v, want [p1 p3]", got)
	}
	for _, p := range ranked {
		if p.Relevance.Score != 0 || p.Relevance.MatchedInterest != nil {
			t.Errorf("paper %s Relevance = %+v, want zero", p.Paper.ID, p.Relevance)
		}
	}
	if len(excluded) != 1 || excluded[0].Paper.ID != "p2" {
		t.Fatalf("excluded = %v, want only p2", excluded)
	}
	if !reflect.DeepEqual(excluded[0].Reason, []string{"survey"}) {
		t.Errorf("Reason = %v, want [survey]", excluded[0].Reason)
	}
	want := RankStats{Total: 3, Ranked: 2, Excluded: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilterAndRankPassThrough(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	papers := []types.Paper{
		{ID: "p1", Title: "Robot Arms"},
		{ID: "p2", Title: "Robot Legs"},
		{ID: "p3", Title: "Quantum Chemistry"},
	}
	spec := types.KeywordSpec{
		Required: types.RequiredSpec{Enabled: true, Keywords: []string{"robot"}},
	}

	ranked, excluded, stats := r.FilterAndRank(papers, spec, RankOptions{})
	if got := rankedIDs(ranked); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Errorf("order = %v, want input order [p1 p2]", got)
	}
	for _, p := range ranked {
		if p.Relevance.Score != 0 {
			t.Errorf("paper %s Score = %v, want 0", p.Paper.ID, p.Relevance.Score)
		}
		if !reflect.DeepEqual(p.RequiredMatches, []string{"robot"}) {
			t.Errorf("paper %s RequiredMatches = %v", p.Paper.ID, p.RequiredMatches)
		}
	}
	if len(excluded) != 1 || excluded[0].Paper.ID != "p3" {
		t.Fatalf("excluded = %v, want only p3", excluded)
	}
	want := RankStats{Total: 3, Ranked: 2, Excluded: 1, RequiredFiltered: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestFilterAndRankAdvanced(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	papers := []types.Paper{{
		ID:         "p1",
		Title:      "Robot Grasping",
		Categories: []string{"cs.RO"},
		Authors:    []string{"Ada", "Grace"},
	}}
	spec := types.KeywordSpec{Interest: []string{"robot"}}

	// Zero-value weights select the default mix.
	ranked, _, _ := r.FilterAndRank(papers, spec, RankOptions{Advanced: true})
	if len(ranked) != 1 {
		t.Fatalf("ranked = %v, want one paper", rankedIDs(ranked))
	}
	got := ranked[0].Relevance
	if got.Breakdown == nil {
		t.Fatal("Breakdown = nil, want advanced components")
	}
	if math.Abs(got.Breakdown["base"]-1.3) > 1e-9 {
		t.Errorf("Breakdown[base] = %v, want 1.3", got.Breakdown["base"])
	}
	if math.Abs(got.Score-1.4) > 1e-9 {
		t.Errorf("Score = %v, want 1.4", got.Score)
	}
}

func TestFilterAndRankEmptyInput(t *testing.T) {
	r := NewRanker(DefaultDictionary())
	ranked, excluded, stats := r.FilterAndRank(nil, types.KeywordSpec{Interest: []string{"robot"}}, RankOptions{})
	if ranked != nil || excluded != nil {
		t.Errorf("FilterAndRank(nil) = %v, %v, want nil slices", ranked, excluded)
	}
	if stats != (RankStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}
