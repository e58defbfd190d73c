// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives per-profile runs end to end: load researcher
// profiles, fetch candidate papers, rank them, land them in Feishu, and
// report what happened.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperwatch/internal/relevance"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// Defaults for profile fields left unset.
const (
	defaultField      = "all"
	defaultDays       = 7
	defaultMaxResults = 300
	defaultMaxDisplay = 10
	defaultMinScore   = 0.1
)

// honorific is stripped from configured names when deriving the display
// name the bitable tables and digests use.
const honorific = "研究员"

// UserProfile names the researcher a profile belongs to.
type UserProfile struct {
	Name         string `yaml:"name"`
	ResearchArea string `yaml:"research_area"`
	Description  string `yaml:"description"`
}

// SearchSettings bounds the acquisition and ranking stages of one run.
type SearchSettings struct {
	// Field is a research-field expression resolved to arXiv categories
	// (e.g. "robotics", "ai+cv").
	Field string `yaml:"field"`

	// Query is optional free text ANDed into the arXiv search.
	Query string `yaml:"query"`

	Days       int `yaml:"days"`
	MaxResults int `yaml:"max_results"`
	MaxDisplay int `yaml:"max_display"`

	// MinScore is the relevance floor for the ranked listing. A pointer
	// so an explicit 0 survives loading; nil means the default.
	MinScore *float64 `yaml:"min_score"`

	// SyncThreshold drops papers scoring below it at sync time. Zero
	// keeps everything the ranking kept.
	SyncThreshold float64 `yaml:"sync_threshold"`
}

// RequiredSettings is the AND-of-OR gate block. FuzzyMatch is a pointer
// so an absent key means enabled.
type RequiredSettings struct {
	Enabled             bool     `yaml:"enabled"`
	Keywords            []string `yaml:"keywords"`
	FuzzyMatch          *bool    `yaml:"fuzzy_match"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
}

// MatchingSettings toggles the multi-dimension scorer.
type MatchingSettings struct {
	Enabled      bool                   `yaml:"enabled"`
	ScoreWeights relevance.ScoreWeights `yaml:"score_weights"`
}

// FeishuSettings is the per-profile notification gate.
type FeishuSettings struct {
	ChatNotification struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"chat_notification"`
}

// Profile is one sync_*.yaml: who the papers are for, where to look,
// and how to judge relevance.
type Profile struct {
	// ID is the profile filename stem, set by the loader.
	ID string `yaml:"-"`

	UserProfile         UserProfile      `yaml:"user_profile"`
	Search              SearchSettings   `yaml:"search"`
	InterestKeywords    []string         `yaml:"interest_keywords"`
	ExcludeKeywords     []string         `yaml:"exclude_keywords"`
	RequiredKeywords    RequiredSettings `yaml:"required_keywords"`
	IntelligentMatching MatchingSettings `yaml:"intelligent_matching"`
	Feishu              FeishuSettings   `yaml:"feishu"`
}

// LoadProfile reads, normalizes, and validates one profile file.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile %s: %w", filepath.Base(path), err)
	}
	p.ID = profileID(path)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// DiscoverProfiles loads every sync*.yaml under dir in name order. A
// file that fails to load is skipped with a warning so one broken
// profile cannot take the whole batch down.
func DiscoverProfiles(dir string, w io.Writer) ([]Profile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "sync*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	var profiles []Profile
	for _, path := range matches {
		p, err := LoadProfile(path)
		if err != nil {
			fmt.Fprintf(w, "warning: skipping %s: %v\n", filepath.Base(path), err)
			continue
		}
		profiles = append(profiles, p)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no usable sync*.yaml profiles under %s", dir)
	}
	return profiles, nil
}

func profileID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize fills defaulted fields in place. Loading does this
// automatically; callers constructing profiles by hand must do it
// themselves.
func (p *Profile) Normalize() {
	if strings.TrimSpace(p.Search.Field) == "" {
		p.Search.Field = defaultField
	}
	if p.Search.Days <= 0 {
		p.Search.Days = defaultDays
	}
	if p.Search.MaxResults <= 0 {
		p.Search.MaxResults = defaultMaxResults
	}
	if p.Search.MaxDisplay <= 0 {
		p.Search.MaxDisplay = defaultMaxDisplay
	}
	if p.Search.MinScore == nil {
		v := defaultMinScore
		p.Search.MinScore = &v
	}
	if p.UserProfile.ResearchArea == "" {
		p.UserProfile.ResearchArea = strings.TrimPrefix(p.ID, "sync_")
	}
}

// Validate rejects configurations that could only fail downstream.
func (p *Profile) Validate() error {
	if p.RequiredKeywords.Enabled && len(nonBlank(p.RequiredKeywords.Keywords)) == 0 {
		return fmt.Errorf("required_keywords.enabled is true but no keywords are listed")
	}
	if t := p.RequiredKeywords.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("required_keywords.similarity_threshold %v is outside [0, 1]", t)
	}
	if p.Search.SyncThreshold < 0 {
		return fmt.Errorf("search.sync_threshold must not be negative")
	}
	return nil
}

// DisplayName strips the honorific from the configured name; profiles
// without a name fall back to the research area.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(strings.ReplaceAll(p.UserProfile.Name, honorific, ""))
	if name == "" {
		name = strings.TrimSpace(p.UserProfile.ResearchArea)
	}
	return name
}

// MinScore returns the ranking floor with the default applied.
func (p *Profile) MinScore() float64 {
	if p.Search.MinScore == nil {
		return defaultMinScore
	}
	return *p.Search.MinScore
}

// KeywordSpec assembles the relevance-engine inputs from the raw lists.
func (p *Profile) KeywordSpec() types.KeywordSpec {
	required := types.RequiredSpec{
		Enabled:             p.RequiredKeywords.Enabled,
		Keywords:            nonBlank(p.RequiredKeywords.Keywords),
		FuzzyMatch:          p.RequiredKeywords.FuzzyMatch == nil || *p.RequiredKeywords.FuzzyMatch,
		SimilarityThreshold: p.RequiredKeywords.SimilarityThreshold,
	}
	return types.NewKeywordSpec(p.InterestKeywords, nonBlank(p.ExcludeKeywords), required)
}

// RankOptions assembles the ranking controls.
func (p *Profile) RankOptions() relevance.RankOptions {
	return relevance.RankOptions{
		MinScore: p.MinScore(),
		Advanced: p.IntelligentMatching.Enabled,
		Weights:  p.IntelligentMatching.ScoreWeights,
	}
}

func nonBlank(list []string) []string {
	var out []string
	for _, v := range list {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
