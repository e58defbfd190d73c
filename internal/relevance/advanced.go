package relevance

import (
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// ScoreWeights are the advanced-mode component multipliers.
type ScoreWeights struct {
	Base     float64 `json:"base" yaml:"base"`
	Semantic float64 `json:"semantic" yaml:"semantic"`
	Author   float64 `json:"author" yaml:"author"`
	Novelty  float64 `json:"novelty" yaml:"novelty"`
	Citation float64 `json:"citation" yaml:"citation"`
}

// DefaultScoreWeights returns the standard component mix.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Base: 1.0, Semantic: 0.3, Author: 0.2, Novelty: 0.4, Citation: 0.3}
}

var techTerms = []string{
	"neural", "learning", "model", "algorithm", "method", "approach",
	"framework", "system", "network", "optimization", "training",
	"inference", "prediction", "classification", "regression",
}

var noveltyIndicators = []string{
	"novel", "new", "first", "introduce", "propose", "present",
	"innovative", "breakthrough", "pioneer", "original", "unprecedented",
	"state-of-the-art", "sota", "outperform", "improve", "enhance",
	"advance", "superior", "better than",
}

var highImpactTerms = []string{
	"benchmark", "dataset", "survey", "review", "framework",
	"open source", "code available", "reproducible", "evaluation",
	"comparison", "analysis", "comprehensive", "extensive",
}

var hotCategories = map[string]bool{
	"cs.AI": true, "cs.LG": true, "cs.CV": true, "cs.CL": true, "cs.RO": true,
}

var (
	sentencePattern = regexp.MustCompile(`[.!?]`)
	noveltyPatterns = compileWordPatterns(noveltyIndicators)
)

func compileWordPatterns(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return out
}

// ScoreAdvanced runs the base scorer and layers semantic, author,
// novelty, and citation-potential boosts on top, each clipped to its
// own range. The returned Score is the weighted component sum and
// Breakdown carries the raw components under the keys base, semantic,
// author, novelty, and citation. Vetoed papers return the base result
// untouched.
func (s *Scorer) ScoreAdvanced(paper types.Paper, spec types.KeywordSpec, weights ScoreWeights) types.RelevanceResult {
	result := s.Score(paper, spec)
	if result.Excluded {
		return result
	}

	title := strings.ToLower(paper.Title)
	abstract := strings.ToLower(paper.Abstract)

	result.Breakdown = map[string]float64{
		"base":     result.Score,
		"semantic": semanticBoost(title, abstract, spec.Interest),
		"author":   authorBoost(paper.Authors),
		"novelty":  noveltyBoost(title, abstract),
		"citation": citationPotential(title, abstract, paper.Categories),
	}
	result.Score = result.Breakdown["base"]*weights.Base +
		result.Breakdown["semantic"]*weights.Semantic +
		result.Breakdown["author"]*weights.Author +
		result.Breakdown["novelty"]*weights.Novelty +
		result.Breakdown["citation"]*weights.Citation
	return result
}

// semanticBoost rewards technical density: 0.1 per distinct tech term
// present (up to 1.0), plus 0.05 per tech term sharing a sentence with
// an interest keyword (up to 0.5).
func semanticBoost(title, abstract string, interest []string) float64 {
	if len(interest) == 0 {
		return 0.0
	}

	combined := title + " " + abstract
	count := 0
	for _, term := range techTerms {
		if strings.Contains(combined, term) {
			count++
		}
	}
	boost := math.Min(float64(count)*0.1, 1.0)

	var context float64
	for _, keyword := range interest {
		lower := strings.ToLower(keyword)
		for _, text := range []string{title, abstract} {
			for _, sentence := range sentencePattern.Split(text, -1) {
				if !strings.Contains(sentence, lower) {
					continue
				}
				for _, term := range techTerms {
					if strings.Contains(sentence, term) {
						context += 0.05
					}
				}
			}
		}
	}

	return boost + math.Min(context, 0.5)
}

// authorBoost favors small collaborations.
func authorBoost(authors []string) float64 {
	switch n := len(authors); {
	case n >= 2 && n <= 6:
		return 0.2
	case n == 1:
		return 0.1
	default:
		return 0.0
	}
}

// noveltyBoost counts whole-word novelty indicators across title and
// abstract, weighting title occurrences extra, clipped to 1.0.
func noveltyBoost(title, abstract string) float64 {
	combined := title + " " + abstract
	count := 0
	for _, re := range noveltyPatterns {
		count += len(re.FindAllString(combined, -1))
	}

	titleCount := 0
	for _, indicator := range noveltyIndicators {
		if strings.Contains(title, indicator) {
			titleCount++
		}
	}

	return math.Min(float64(count)*0.1+float64(titleCount)*0.2, 1.0)
}

// citationPotential estimates impact from high-impact markers, hot
// categories, and abstract length, clipped to 1.0.
func citationPotential(title, abstract string, categories []string) float64 {
	combined := title + " " + abstract
	count := 0
	for _, term := range highImpactTerms {
		if strings.Contains(combined, term) {
			count++
		}
	}

	boost := float64(count) * 0.15
	for _, c := range categories {
		if hotCategories[c] {
			boost += 0.2
			break
		}
	}
	boost += math.Min(float64(len(abstract))/1000, 0.3)

	return math.Min(boost, 1.0)
}
