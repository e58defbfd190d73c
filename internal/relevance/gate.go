// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"strings"

	"github.com/pdiddy/paperwatch/internal/fuzzy"
	"github.com/pdiddy/paperwatch/pkg/types"
)

const defaultGateThreshold = 0.8

// Gate evaluates the required-keyword predicate: a conjunction of
// clauses where each clause is a single keyword or an OR-disjunction
// spelled "A OR B".
type Gate struct {
	dict Dictionary
}

// NewGate returns a Gate over the given dictionary.
func NewGate(dict Dictionary) *Gate {
	return &Gate{dict: dict}
}

// Check reports whether the paper satisfies every required clause and
// returns the union of clause keywords that matched. An OR clause
// contributes every alternative that matches, not just the first. A
// disabled or empty spec passes with no matches.
func (g *Gate) Check(paper types.Paper, required types.RequiredSpec) (bool, []string) {
	if !required.Enabled || len(required.Keywords) == 0 {
		return true, nil
	}

	text := strings.ToLower(paper.Title) + " " +
		strings.ToLower(paper.Abstract) + " " +
		strings.ToLower(strings.Join(paper.Categories, " ")) + " " +
		strings.ToLower(strings.Join(paper.Authors, ", "))

	threshold := required.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultGateThreshold
	}

	var matched []string
	for _, item := range required.Keywords {
		hits := g.clauseMatches(item, text, required.FuzzyMatch, threshold)
		if len(hits) == 0 {
			return false, nil
		}
		matched = append(matched, hits...)
	}
	return true, matched
}

func (g *Gate) clauseMatches(item, text string, fuzzyMatch bool, threshold float64) []string {
	if strings.Contains(strings.ToLower(item), " or ") {
		return g.orMatches(item, text, fuzzyMatch, threshold)
	}
	if g.singleMatch(item, text, fuzzyMatch, threshold) {
		return []string{item}
	}
	return nil
}

// orMatches splits a disjunction on its literal separator. Only the
// spellings " OR " and " or " split; a mixed-case separator yields no
// parts and the clause fails.
func (g *Gate) orMatches(item, text string, fuzzyMatch bool, threshold float64) []string {
	var parts []string
	switch {
	case strings.Contains(item, " OR "):
		parts = strings.Split(item, " OR ")
	case strings.Contains(item, " or "):
		parts = strings.Split(item, " or ")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return nil
	}

	var matched []string
	for _, part := range parts {
		if g.singleMatch(part, text, fuzzyMatch, threshold) {
			matched = append(matched, part)
		}
	}
	return matched
}

func (g *Gate) singleMatch(keyword, text string, fuzzyMatch bool, threshold float64) bool {
	lower := strings.ToLower(keyword)
	if strings.Contains(text, lower) {
		return true
	}
	if !fuzzyMatch {
		return false
	}
	for _, v := range g.variants(keyword) {
		if strings.Contains(text, strings.ToLower(v)) {
			return true
		}
	}
	return g.fuzzyMatch(lower, text, threshold)
}

// variants generates morphological and dictionary variants of a
// keyword: synonym lists whose key overlaps the keyword, plural and
// adjectival suffixes, and separator swaps.
func (g *Gate) variants(keyword string) []string {
	lower := strings.ToLower(keyword)
	variants := []string{keyword}

	for key, syns := range g.dict.Synonyms {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			variants = append(variants, syns...)
		}
	}

	if !strings.HasSuffix(keyword, "s") {
		variants = append(variants, keyword+"s")
	}
	if strings.HasSuffix(keyword, "y") {
		variants = append(variants, keyword[:len(keyword)-1]+"ies")
	}

	if strings.HasSuffix(keyword, "e") {
		variants = append(variants, keyword[:len(keyword)-1]+"ic")
	} else {
		variants = append(variants, keyword+"ic")
	}

	if strings.Contains(keyword, " ") {
		variants = append(variants,
			strings.ReplaceAll(keyword, " ", "-"),
			strings.ReplaceAll(keyword, " ", "_"),
			strings.ReplaceAll(keyword, " ", ""))
	}
	if strings.Contains(keyword, "-") {
		variants = append(variants,
			strings.ReplaceAll(keyword, "-", " "),
			strings.ReplaceAll(keyword, "-", "_"),
			strings.ReplaceAll(keyword, "-", ""))
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// fuzzyMatch compares the keyword against every whitespace-separated
// word of at least three runes, and, for multi-word keywords, against
// sliding windows of the same word count.
func (g *Gate) fuzzyMatch(keyword, text string, threshold float64) bool {
	words := strings.Fields(text)
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if fuzzy.Ratio(keyword, w) >= threshold {
			return true
		}
	}

	kwWords := strings.Fields(keyword)
	if n := len(kwWords); n > 1 {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			if fuzzy.Ratio(keyword, phrase) >= threshold {
				return true
			}
		}
	}
	return false
}
