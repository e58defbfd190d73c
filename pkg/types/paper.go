// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds the metadata of one arXiv entry as returned by the upstream
// API. Papers are created by the acquisition stage and immutable afterwards;
// the remote table owns the persisted copy.
type Paper struct {
	// ID is the final path segment of the entry URL (e.g. "2301.07041v2").
	// Primary key everywhere: dedup, remote-table idempotence, ledger.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract with whitespace collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Categories lists the arXiv category tags; the primary category is first.
	Categories []string `json:"categories" yaml:"categories"`

	// PrimaryCategory is the declared primary category (e.g. "cs.RO").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Published is the first-submission time.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the latest-revision time; defaults to Published when the
	// feed omits it.
	Updated time.Time `json:"updated" yaml:"updated"`

	// EntryURL is the abstract page URL.
	EntryURL string `json:"entry_url" yaml:"entry_url"`

	// PDFURL is the direct PDF URL.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Comment is the author comment field, if any.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// JournalRef is the journal reference, if any.
	JournalRef string `json:"journal_ref,omitempty" yaml:"journal_ref,omitempty"`

	// DOI is the digital object identifier, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// RelevanceResult is the outcome of scoring one paper against a keyword spec.
type RelevanceResult struct {
	// Score is the composite relevance score; -999 when excluded.
	Score float64 `json:"score" yaml:"score"`

	// Excluded reports whether an exclude keyword vetoed the paper.
	Excluded bool `json:"excluded" yaml:"excluded"`

	// MatchedInterest lists the interest keywords that contributed.
	MatchedInterest []string `json:"matched_interest" yaml:"matched_interest"`

	// MatchedExclude lists the exclude keywords that vetoed, fuzzy hits
	// annotated as "term(fuzzy)".
	MatchedExclude []string `json:"matched_exclude" yaml:"matched_exclude"`

	// Breakdown carries the per-component scores in advanced mode
	// (base, semantic, author, novelty, citation).
	Breakdown map[string]float64 `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// ScoredPaper pairs a paper with its relevance outcome and, when the
// required gate ran, the keywords that satisfied it.
type ScoredPaper struct {
	Paper           Paper           `json:"paper" yaml:"paper"`
	Relevance       RelevanceResult `json:"relevance" yaml:"relevance"`
	RequiredMatches []string        `json:"required_matches,omitempty" yaml:"required_matches,omitempty"`
}
