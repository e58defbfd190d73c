// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"sort"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// RankStats summarizes one filter-and-rank pass.
type RankStats struct {
	Total            int     `json:"total"`
	Ranked           int     `json:"ranked"`
	Excluded         int     `json:"excluded"`
	RequiredFiltered int     `json:"required_filtered"`
	MaxScore         float64 `json:"max_score"`
	MinScore         float64 `json:"min_score"`
	AvgScore         float64 `json:"avg_score"`
}

// RankOptions control scoring mode and the acceptance threshold.
type RankOptions struct {
	// MinScore drops papers scoring below it. Papers dropped here are
	// neither ranked nor reported as excluded.
	MinScore float64
	// Advanced enables the boosted scorer.
	Advanced bool
	// Weights are the advanced-mode component multipliers; the zero
	// value selects DefaultScoreWeights.
	Weights ScoreWeights
}

// ExcludedPaper pairs a rejected paper with the reason it was rejected:
// the matched exclude terms, or "required-missed" for gate failures.
type ExcludedPaper struct {
	Paper  types.Paper
	Reason []string
}

// Ranker runs the required gate and the scorer over candidate lists.
type Ranker struct {
	gate   *Gate
	scorer *Scorer
}

// NewRanker returns a Ranker over the given dictionary.
func NewRanker(dict Dictionary) *Ranker {
	return &Ranker{gate: NewGate(dict), scorer: NewScorer(dict)}
}

// FilterAndRank reduces candidates to a ranked list. Papers failing
// the required gate are excluded with reason "required-missed". With
// no interest and no exclude keywords every survivor passes through
// unchanged. With exclude keywords only, vetoes apply but no scores
// are assigned. Otherwise papers are scored, thresholded by MinScore,
// and sorted by score descending with ties broken by newer
// publication date and then lexicographic paper id.
func (r *Ranker) FilterAndRank(papers []types.Paper, spec types.KeywordSpec, opts RankOptions) ([]types.ScoredPaper, []ExcludedPaper, RankStats) {
	stats := RankStats{Total: len(papers)}
	if len(papers) == 0 {
		return nil, nil, stats
	}

	weights := opts.Weights
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}

	var ranked []types.ScoredPaper
	var excluded []ExcludedPaper

	for _, paper := range papers {
		var requiredMatches []string
		if spec.Required.Enabled {
			pass, matches := r.gate.Check(paper, spec.Required)
			if !pass {
				stats.RequiredFiltered++
				excluded = append(excluded, ExcludedPaper{Paper: paper, Reason: []string{"required-missed"}})
				continue
			}
			requiredMatches = matches
		}

		if len(spec.Interest) == 0 && len(spec.Exclude) == 0 {
			ranked = append(ranked, types.ScoredPaper{Paper: paper, RequiredMatches: requiredMatches})
			continue
		}

		if len(spec.Interest) == 0 {
			// Exclude-only spec: veto filtering without scoring.
			result := r.scorer.Score(paper, spec)
			if result.Excluded {
				excluded = append(excluded, ExcludedPaper{Paper: paper, Reason: result.MatchedExclude})
				continue
			}
			ranked = append(ranked, types.ScoredPaper{Paper: paper, Relevance: result, RequiredMatches: requiredMatches})
			continue
		}

		var result types.RelevanceResult
		if opts.Advanced {
			result = r.scorer.ScoreAdvanced(paper, spec, weights)
		} else {
			result = r.scorer.Score(paper, spec)
		}
		if result.Excluded {
			excluded = append(excluded, ExcludedPaper{Paper: paper, Reason: result.MatchedExclude})
			continue
		}
		if result.Score < opts.MinScore {
			continue
		}
		ranked = append(ranked, types.ScoredPaper{Paper: paper, Relevance: result, RequiredMatches: requiredMatches})
	}

	if len(spec.Interest) > 0 {
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.Relevance.Score != b.Relevance.Score {
				return a.Relevance.Score > b.Relevance.Score
			}
			if !a.Paper.Published.Equal(b.Paper.Published) {
				return a.Paper.Published.After(b.Paper.Published)
			}
			return a.Paper.ID < b.Paper.ID
		})
	}

	stats.Ranked = len(ranked)
	stats.Excluded = len(excluded)
	if len(ranked) > 0 {
		var sum float64
		for _, p := range ranked {
			sum += p.Relevance.Score
		}
		stats.MaxScore = ranked[0].Relevance.Score
		stats.MinScore = ranked[len(ranked)-1].Relevance.Score
		stats.AvgScore = sum / float64(len(ranked))
	}
	return ranked, excluded, stats
}
