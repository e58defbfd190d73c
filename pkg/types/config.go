package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperwatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ArxivConfig holds settings for the arXiv acquisition stage.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the minimum spacing between consecutive API requests
	// (default 3s, the published arXiv courtesy limit).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries is the number of retry attempts per request (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxDaysPerBatch is the widest date window fetched in one pass; wider
	// requests are split into consecutive sub-windows (default 7).
	MaxDaysPerBatch int `json:"max_days_per_batch" yaml:"max_days_per_batch"`

	// BatchOverlapDays extends each sub-window backwards over its
	// predecessor to defend against boundary misses (default 0).
	BatchOverlapDays int `json:"batch_overlap_days" yaml:"batch_overlap_days"`

	// MinBatchInterval is the sleep between consecutive sub-window fetches
	// (default 1s).
	MinBatchInterval time.Duration `json:"min_batch_interval" yaml:"min_batch_interval"`
}

// FeishuConfig holds credentials and settings for the Feishu open API.
// Credentials normally arrive through the environment (FEISHU_APP_ID,
// FEISHU_APP_SECRET, FEISHU_USER_ACCESS_TOKEN, FEISHU_TENANT_ACCESS_TOKEN,
// FEISHU_BITABLE_APP_TOKEN), optionally seeded from .secrets/.
type FeishuConfig struct {
	HTTPConfig `yaml:",inline"`

	// AppID and AppSecret identify the bot application for the tenant
	// token exchange.
	AppID     string `json:"app_id" yaml:"app_id"`
	AppSecret string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`

	// UserAccessToken, when set, is used as-is and never refreshed.
	UserAccessToken string `json:"user_access_token,omitempty" yaml:"user_access_token,omitempty"`

	// TenantAccessToken, when set, seeds the token cache.
	TenantAccessToken string `json:"tenant_access_token,omitempty" yaml:"tenant_access_token,omitempty"`

	// AppToken is the bitable base that holds the per-profile paper tables.
	AppToken string `json:"app_token" yaml:"app_token"`

	// BatchSize is the number of rows per batch-create call (default 20).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRetries is the number of attempts per request on transport errors
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the fixed spacing between those attempts (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// NotifyConfig holds settings for the chat digest broadcast.
type NotifyConfig struct {
	// Enabled controls whether any digest is sent.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MinPapersThreshold is the smallest aggregate new-paper count worth a
	// digest (default 1).
	MinPapersThreshold int `json:"min_papers_threshold" yaml:"min_papers_threshold"`

	// MaxRecommended is how many top papers each profile section shows
	// (default 1).
	MaxRecommended int `json:"max_recommended" yaml:"max_recommended"`

	// ChatDelay is the spacing between sends to consecutive chats
	// (default 500ms).
	ChatDelay time.Duration `json:"chat_delay" yaml:"chat_delay"`
}

// LedgerConfig holds settings for the local run-history store.
type LedgerConfig struct {
	// Path is the SQLite database file (default "data/paperwatch.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Arxiv       ArxivConfig  `json:"arxiv" yaml:"arxiv"`
	Feishu      FeishuConfig `json:"feishu" yaml:"feishu"`
	Notify      NotifyConfig `json:"notify" yaml:"notify"`
	Ledger      LedgerConfig `json:"ledger" yaml:"ledger"`
	ProfilesDir string       `json:"profiles_dir" yaml:"profiles_dir"`
}
