// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// KeywordSpec is the per-profile keyword configuration consumed by the
// relevance engine. It is built once by the configuration layer and
// read-only afterwards.
type KeywordSpec struct {
	// RawInterest is the interest list as written, including tier-marker
	// comment lines (entries starting with "#") and blanks.
	RawInterest []string `json:"raw_interest" yaml:"raw_interest"`

	// Interest is RawInterest with comments and blanks stripped. Order is
	// preserved: earlier keywords carry more positional weight.
	Interest []string `json:"interest" yaml:"interest"`

	// Exclude lists veto keywords; any hit rejects the paper.
	Exclude []string `json:"exclude" yaml:"exclude"`

	// Required configures the AND-of-OR gate papers must pass before scoring.
	Required RequiredSpec `json:"required" yaml:"required"`
}

// RequiredSpec configures the required-keyword gate. Each entry of Keywords
// is a clause: either a single keyword or an OR-disjunction written
// "A OR B OR C". Clauses combine with AND.
type RequiredSpec struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Keywords []string `json:"keywords" yaml:"keywords"`

	// FuzzyMatch enables the morphological-variant and similarity fallbacks
	// (default true).
	FuzzyMatch bool `json:"fuzzy_match" yaml:"fuzzy_match"`

	// SimilarityThreshold is the minimum similarity ratio for a fuzzy hit
	// (default 0.8).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
}

// NewKeywordSpec builds a KeywordSpec from the raw profile lists, stripping
// comment and blank entries out of the interest list.
func NewKeywordSpec(rawInterest, exclude []string, required RequiredSpec) KeywordSpec {
	spec := KeywordSpec{
		RawInterest: rawInterest,
		Exclude:     exclude,
		Required:    required,
	}
	for _, entry := range rawInterest {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		spec.Interest = append(spec.Interest, trimmed)
	}
	return spec
}

// IsEmpty reports whether the spec has neither interest nor exclude keywords.
func (s KeywordSpec) IsEmpty() bool {
	return len(s.Interest) == 0 && len(s.Exclude) == 0
}
