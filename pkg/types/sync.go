// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Hyperlink is the bitable hyperlink cell value.
type Hyperlink struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// RowFields is one paper formatted for the remote paper table. JSON tags
// are the literal bitable field names; multi-select cells are string
// slices, dates are epoch milliseconds. The server-filled "Sync Time"
// column is never sent.
type RowFields struct {
	ArxivID         Hyperlink  `json:"ArXiv ID"`
	Title           string     `json:"Title"`
	Authors         []string   `json:"Authors,omitempty"`
	Abstract        string     `json:"Abstract,omitempty"`
	Categories      []string   `json:"Categories,omitempty"`
	MatchedKeywords []string   `json:"Matched Keywords,omitempty"`
	RequiredMatches []string   `json:"Required Matches,omitempty"`
	RelevanceScore  float64    `json:"Relevance Score"`
	ResearchArea    []string   `json:"Research Area,omitempty"`
	PDFLink         *Hyperlink `json:"PDF Link,omitempty"`
	PublishedDate   int64      `json:"Published Date,omitempty"`
	UpdatedDate     int64      `json:"Updated Date,omitempty"`
}

// SyncDelta summarizes what one profile sync produced; deltas accumulate
// across a batch run and feed the digest notification.
type SyncDelta struct {
	// ProfileID names the profile; digest table links are keyed by it.
	ProfileID string `json:"profile_id" yaml:"profile_id"`

	// TableID and TableName identify the remote paper table.
	TableID   string `json:"table_id" yaml:"table_id"`
	TableName string `json:"table_name" yaml:"table_name"`

	// NewCount is the number of rows inserted by this sync.
	NewCount int `json:"new_count" yaml:"new_count"`

	// TotalCount is the table size after the sync (pre-existing + new).
	TotalCount int `json:"total_count" yaml:"total_count"`

	// NewlyInserted lists the papers behind NewCount, still carrying their
	// scores for the digest's top-paper pick.
	NewlyInserted []ScoredPaper `json:"newly_inserted" yaml:"newly_inserted"`
}
