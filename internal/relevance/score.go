// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance matches papers against per-profile keyword specs.
// A paper must pass the required-keyword gate and survive the exclude
// vetoes; survivors accumulate a layered-weight interest score built
// from positional, fuzzy, category, time-decay, domain, and
// co-occurrence signals.
package relevance

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/paperwatch/internal/fuzzy"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// ExcludedScore is the sentinel relevance score of a vetoed paper.
const ExcludedScore = -999.0

const (
	interestThreshold = 0.8
	excludeThreshold  = 0.9
	decayDays         = 30
	fuzzyWordCap      = 100
)

// wildcardTokens make an interest list match every paper.
var wildcardTokens = map[string]bool{
	"*": true, "all": true, ".*": true, "全部": true, "所有": true,
}

var wordPattern = regexp.MustCompile(`\w+`)

// Scorer computes relevance scores from a shared dictionary.
type Scorer struct {
	dict Dictionary
	now  func() time.Time
}

// NewScorer returns a Scorer over the given dictionary.
func NewScorer(dict Dictionary) *Scorer {
	return &Scorer{dict: dict, now: time.Now}
}

// Score evaluates one paper against the keyword spec. Exclusion is
// checked first and vetoes everything, wildcards included; a veto
// returns ExcludedScore with the matched exclude terms. A wildcard
// interest list scores a flat 1.0. Otherwise every interest keyword
// contributes its match score scaled by position, tier, time-decay,
// domain, and co-occurrence weights.
func (s *Scorer) Score(paper types.Paper, spec types.KeywordSpec) types.RelevanceResult {
	title := strings.ToLower(paper.Title)
	abstract := strings.ToLower(paper.Abstract)
	categoriesJoined := strings.ToLower(strings.Join(paper.Categories, " "))
	authorsJoined := strings.ToLower(strings.Join(paper.Authors, ", "))
	fullText := title + " " + abstract + " " + categoriesJoined + " " + authorsJoined

	if len(spec.Exclude) > 0 {
		var vetoed []string
		for _, term := range s.dict.Expand(spec.Exclude) {
			if strings.Contains(fullText, strings.ToLower(term)) {
				vetoed = append(vetoed, term)
				continue
			}
			if fuzzyScore(term, fullText, excludeThreshold) > 0 {
				vetoed = append(vetoed, term+"(fuzzy)")
			}
		}
		if len(vetoed) > 0 {
			return types.RelevanceResult{Score: ExcludedScore, Excluded: true, MatchedExclude: vetoed}
		}
	}

	if len(spec.Interest) == 0 {
		return types.RelevanceResult{}
	}
	if isWildcard(spec.Interest) {
		return types.RelevanceResult{Score: 1.0, MatchedInterest: []string{"*"}}
	}

	tiers := s.dict.ParseTiers(spec.RawInterest)
	expanded := s.dict.Expand(spec.Interest)

	timeWeight := s.timeDecay(paper.Published)
	domainWeight := s.dict.domainRelevance(paper.Categories)
	cooccurrence := cooccurrenceBonus(expanded, fullText)

	var score float64
	var matched []string
	for i, keyword := range spec.Interest {
		baseWeight := float64(len(spec.Interest) - i)
		tierWeight, ok := tiers[keyword]
		if !ok {
			tierWeight = s.dict.weightOf(tierDefault)
		}

		if hit, contribution := enhancedMatch(keyword, fullText); hit {
			matched = append(matched, keyword)
			score += contribution * baseWeight * tierWeight * timeWeight * domainWeight * cooccurrence
			continue
		}

		if kwScore := s.variantScore(keyword, title, abstract, categoriesJoined); kwScore > 0 {
			matched = append(matched, keyword)
			score += kwScore * baseWeight * tierWeight * timeWeight * domainWeight * cooccurrence
		}
	}

	return types.RelevanceResult{Score: score, MatchedInterest: matched}
}

// enhancedMatch tries the regex prefix convention, then substring,
// then fuzzy matching against the combined text. The contribution is
// 1.0 except for fuzzy hits, which carry their similarity ratio. Regex
// keywords never fall through to the fuzzy stage.
func enhancedMatch(keyword, fullText string) (bool, float64) {
	if pattern, ok := regexBody(keyword); ok {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			// Invalid pattern degrades to a plain substring test.
			hit := strings.Contains(fullText, strings.ToLower(keyword))
			return hit, boolScore(hit)
		}
		hit := re.MatchString(fullText)
		return hit, boolScore(hit)
	}
	if strings.Contains(fullText, strings.ToLower(keyword)) {
		return true, 1.0
	}
	if r := fuzzyScore(keyword, fullText, interestThreshold); r > 0 {
		return true, r
	}
	return false, 0.0
}

func regexBody(keyword string) (string, bool) {
	if rest, ok := strings.CutPrefix(keyword, "regex:"); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(keyword, "re:"); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func boolScore(hit bool) float64 {
	if hit {
		return 1.0
	}
	return 0.0
}

// variantScore sums the positional, fuzzy, and category contributions
// of a keyword and its synonyms.
func (s *Scorer) variantScore(keyword, title, abstract, categoriesJoined string) float64 {
	lower := strings.ToLower(keyword)
	variants := []string{lower}
	for _, syn := range s.dict.Synonyms[lower] {
		variants = append(variants, strings.ToLower(syn))
	}

	var total float64
	for _, v := range variants {
		total += positionalScore(v, title, abstract)
		if r := fuzzyScore(v, title, interestThreshold); r > 0 {
			total += r * 2.0
		}
		if r := fuzzyScore(v, abstract, interestThreshold); r > 0 {
			total += r * 1.0
		}
		if n := wholeWordCount(v, categoriesJoined); n > 0 {
			total += float64(n) * 1.5
		}
	}
	return total
}

// positionalScore weights a title hit by how early the first title word
// containing the variant appears, and an abstract hit by whether the
// first occurrence falls within the leading 30% of the abstract.
// Multi-word variants never sit inside a single title word, so they
// earn no title position weight even when present.
func positionalScore(variant, title, abstract string) float64 {
	var total float64

	if strings.Contains(title, variant) {
		words := strings.Fields(title)
		pos := -1
		for i, w := range words {
			if strings.Contains(w, variant) {
				pos = i
				break
			}
		}
		if pos >= 0 {
			factor := math.Max(0.5, 1.0-float64(pos)/float64(len(words))*0.5)
			total += 3.0 * factor
		}
	}

	if strings.Contains(abstract, variant) {
		if idx := strings.Index(abstract, variant); float64(idx) < float64(len(abstract))*0.3 {
			total += 2.5
		} else {
			total += 1.5
		}
	}

	return total
}

// fuzzyScore is the best per-word similarity of keyword against text,
// or 0 below the threshold. A substring hit short-circuits at 1.0.
// Only the first fuzzyWordCap words are compared and words shorter
// than three runes are skipped.
func fuzzyScore(keyword, text string, threshold float64) float64 {
	keyword = strings.ToLower(keyword)
	text = strings.ToLower(text)
	if strings.Contains(text, keyword) {
		return 1.0
	}

	words := wordPattern.FindAllString(text, -1)
	if len(words) > fuzzyWordCap {
		words = words[:fuzzyWordCap]
	}

	best := 0.0
	for _, w := range words {
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		if r := fuzzy.Ratio(keyword, w); r >= threshold && r > best {
			best = r
			if r > 0.95 {
				break
			}
		}
	}
	return best
}

// wholeWordCount counts whole-word occurrences of term in text.
func wholeWordCount(term, text string) int {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllString(text, -1))
}

// cooccurrenceBonus rewards papers mentioning two or more distinct
// expanded interest terms.
func cooccurrenceBonus(expanded []string, fullText string) float64 {
	found := 0
	for _, term := range expanded {
		if strings.Contains(fullText, strings.ToLower(term)) {
			found++
		}
	}
	if found >= 2 {
		return 1.0 + float64(found-1)*0.2
	}
	return 1.0
}

// timeDecay fades a paper's weight linearly to 0.7 across decayDays.
// Unknown and future publication dates count as fresh.
func (s *Scorer) timeDecay(published time.Time) float64 {
	if published.IsZero() {
		return 1.0
	}
	days := int(s.now().Sub(published).Hours() / 24)
	switch {
	case days <= 0:
		return 1.0
	case days <= decayDays:
		return 1.0 - float64(days)/float64(decayDays)*0.3
	default:
		return 0.7
	}
}

func isWildcard(interest []string) bool {
	for _, kw := range interest {
		if wildcardTokens[strings.TrimSpace(strings.ToLower(kw))] {
			return true
		}
	}
	return len(interest) == 1 && strings.TrimSpace(interest[0]) == ""
}
