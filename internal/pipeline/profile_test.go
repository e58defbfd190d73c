// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const robotProfileYAML = `
user_profile:
  name: 张三研究员
  research_area: 移动操作
  description: whole-body mobile manipulation

search:
  field: robotics
  days: 3
  max_results: 150
  max_display: 5
  min_score: 0.4
  sync_threshold: 0.6
  query: mobile manipulation

interest_keywords:
  - "# 🎯 核心概念"
  - mobile manipulation
  - whole-body control
  - "# 📝 相关概念"
  - grasping

exclude_keywords:
  - survey
  - ""

required_keywords:
  enabled: true
  keywords:
    - mobile OR locomotion
    - manipulation
  fuzzy_match: false
  similarity_threshold: 0.85

intelligent_matching:
  enabled: true
  score_weights:
    base: 1.0
    semantic: 0.5

feishu:
  chat_notification:
    enabled: true
`

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadProfileParsesEveryBlock(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "sync_robotics.yaml", robotProfileYAML)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}

	if p.ID != "sync_robotics" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.UserProfile.Name != "张三研究员" || p.UserProfile.ResearchArea != "移动操作" {
		t.Errorf("user profile = %+v", p.UserProfile)
	}
	if p.Search.Field != "robotics" || p.Search.Days != 3 || p.Search.MaxResults != 150 {
		t.Errorf("search = %+v", p.Search)
	}
	if p.Search.Query != "mobile manipulation" {
		t.Errorf("Query = %q", p.Search.Query)
	}
	if p.MinScore() != 0.4 {
		t.Errorf("MinScore() = %v, want 0.4", p.MinScore())
	}
	if p.Search.SyncThreshold != 0.6 {
		t.Errorf("SyncThreshold = %v", p.Search.SyncThreshold)
	}
	if !p.Feishu.ChatNotification.Enabled {
		t.Error("chat notification should be enabled")
	}

	spec := p.KeywordSpec()
	wantInterest := []string{"mobile manipulation", "whole-body control", "grasping"}
	if !reflect.DeepEqual(spec.Interest, wantInterest) {
		t.Errorf("Interest = %v, want comment lines stripped", spec.Interest)
	}
	if !reflect.DeepEqual(spec.RawInterest, p.InterestKeywords) {
		t.Errorf("RawInterest should carry the tier-marker comments")
	}
	if !reflect.DeepEqual(spec.Exclude, []string{"survey"}) {
		t.Errorf("Exclude = %v, want blanks dropped", spec.Exclude)
	}
	if !spec.Required.Enabled || spec.Required.FuzzyMatch {
		t.Errorf("Required = %+v, want enabled with fuzzy off", spec.Required)
	}
	if spec.Required.SimilarityThreshold != 0.85 {
		t.Errorf("SimilarityThreshold = %v", spec.Required.SimilarityThreshold)
	}

	opts := p.RankOptions()
	if !opts.Advanced || opts.MinScore != 0.4 {
		t.Errorf("RankOptions = %+v", opts)
	}
	if opts.Weights.Semantic != 0.5 {
		t.Errorf("Weights.Semantic = %v", opts.Weights.Semantic)
	}
}

func TestLoadProfileAppliesDefaults(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "sync_quantum.yaml", "interest_keywords: [qubit]\n")

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}

	if p.Search.Field != "all" || p.Search.Days != 7 || p.Search.MaxResults != 300 || p.Search.MaxDisplay != 10 {
		t.Errorf("search defaults = %+v", p.Search)
	}
	if p.MinScore() != 0.1 {
		t.Errorf("MinScore() = %v, want the 0.1 default", p.MinScore())
	}
	if p.UserProfile.ResearchArea != "quantum" {
		t.Errorf("ResearchArea = %q, want the filename stem minus sync_", p.UserProfile.ResearchArea)
	}
	if !p.KeywordSpec().Required.FuzzyMatch {
		t.Error("Required.FuzzyMatch should default to true")
	}
	if p.Feishu.ChatNotification.Enabled {
		t.Error("chat notification should default to off")
	}
}

func TestLoadProfileKeepsExplicitZeroMinScore(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "sync_all.yaml", "search:\n  min_score: 0\n")

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}
	if p.MinScore() != 0 {
		t.Errorf("MinScore() = %v, want the explicit 0", p.MinScore())
	}
}

func TestLoadProfileRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "gate enabled without keywords",
			yaml:   "required_keywords:\n  enabled: true\n  keywords: [\"\", \"  \"]\n",
			errMsg: "no keywords",
		},
		{
			name:   "similarity threshold out of range",
			yaml:   "required_keywords:\n  enabled: true\n  keywords: [robot]\n  similarity_threshold: 1.5\n",
			errMsg: "similarity_threshold",
		},
		{
			name:   "negative sync threshold",
			yaml:   "search:\n  sync_threshold: -0.2\n",
			errMsg: "sync_threshold",
		},
		{
			name:   "not yaml at all",
			yaml:   "\t{{{",
			errMsg: "parsing profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), "sync_bad.yaml", tt.yaml)
			_, err := LoadProfile(path)
			if err == nil {
				t.Fatal("LoadProfile() expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want %q inside", err, tt.errMsg)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		area     string
		want     string
	}{
		{"honorific stripped", "张三研究员", "移动操作", "张三"},
		{"plain name kept", "Ada", "robotics", "Ada"},
		{"falls back to research area", "", "具身智能", "具身智能"},
		{"honorific alone falls back", "研究员", "移动操作", "移动操作"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{}
			p.UserProfile.Name = tt.userName
			p.UserProfile.ResearchArea = tt.area
			if got := p.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscoverProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "sync_b.yaml", "interest_keywords: [beta]\n")
	writeProfile(t, dir, "sync_a.yaml", "interest_keywords: [alpha]\n")
	writeProfile(t, dir, "sync_broken.yaml", "\t{{{")
	writeProfile(t, dir, "notes.yaml", "interest_keywords: [ignored]\n")

	var buf bytes.Buffer
	profiles, err := DiscoverProfiles(dir, &buf)
	if err != nil {
		t.Fatalf("DiscoverProfiles() error: %v", err)
	}

	var ids []string
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, []string{"sync_a", "sync_b"}) {
		t.Errorf("ids = %v, want [sync_a sync_b]", ids)
	}
	if !strings.Contains(buf.String(), "warning: skipping sync_broken.yaml") {
		t.Errorf("output = %q, want a skip warning", buf.String())
	}
}

func TestDiscoverProfilesEmptyDirErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := DiscoverProfiles(t.TempDir(), &buf)
	if err == nil {
		t.Fatal("DiscoverProfiles() expected error for a dir without profiles")
	}
}
