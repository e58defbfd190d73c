// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// feishuAPIBase is the open-platform endpoint prefix. Tests point it at
// a local server.
var feishuAPIBase = "https://open.feishu.cn/open-apis"

const (
	defaultTimeout    = 30 * time.Second
	defaultBatchSize  = 20
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// invalidTokenCode is the business code the platform returns when the
// bearer token has expired or been revoked.
const invalidTokenCode = 99991663

// ErrTableNotFound reports that no table in the base carries the
// requested name.
var ErrTableNotFound = errors.New("feishu: table not found")

// APIError is a non-zero business code (or an auth rejection) inside an
// otherwise well-formed response envelope.
type APIError struct {
	Op     string
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu: %s: code %d (%s), http status %d", e.Op, e.Code, e.Msg, e.Status)
}

// Client wraps the Feishu open API surface the pipeline needs: bitable
// tables and records, bot chat enumeration, and message delivery. Every
// endpoint answers with the common {code, msg, data} envelope; code 0
// means success.
type Client struct {
	cfg    types.FeishuConfig
	http   *http.Client
	tokens *TokenManager

	chatMu  sync.Mutex
	chats   []Chat
	chatsAt time.Time
	now     func() time.Time
}

// NewClient returns a Client with config defaults applied.
func NewClient(cfg types.FeishuConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:    cfg,
		http:   hc,
		tokens: NewTokenManager(cfg, hc),
		now:    time.Now,
	}
}

// ValidateCredentials reports whether the config can possibly
// authenticate: a bitable app token plus either a ready-made access
// token or the app credential pair for the tenant-token exchange.
// Placeholder values count as absent.
func ValidateCredentials(cfg types.FeishuConfig) error {
	if realToken(cfg.AppToken) == "" {
		return errors.New("feishu: bitable app token is not configured (FEISHU_BITABLE_APP_TOKEN)")
	}
	if realToken(cfg.UserAccessToken) != "" || realToken(cfg.TenantAccessToken) != "" {
		return nil
	}
	if realToken(cfg.AppID) == "" || realToken(cfg.AppSecret) == "" {
		return errors.New("feishu: neither an access token nor an app_id/app_secret pair is configured")
	}
	return nil
}

// envelope is the wrapper every endpoint answers with.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// doJSON performs one authenticated call, decoding the data member into
// out when non-nil. Transport failures and 429/5xx statuses are retried
// inside httputil.DoWithRetry; an expired token triggers exactly one
// forced refresh and replay.
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, payload, out any) error {
	err := c.call(ctx, op, method, path, query, payload, out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && tokenExpired(apiErr) {
		if rerr := c.tokens.ForceRefresh(ctx); rerr != nil {
			return fmt.Errorf("feishu: %s: refreshing expired token: %w", op, rerr)
		}
		return c.call(ctx, op, method, path, query, payload, out)
	}
	return err
}

func tokenExpired(e *APIError) bool {
	return e.Code == invalidTokenCode || e.Status == http.StatusUnauthorized
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("feishu: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	endpoint := feishuAPIBase + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("feishu: %s: build request: %w", op, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("feishu: %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.cfg.RetryDelay)
	if err != nil {
		return fmt.Errorf("feishu: %s: %w", op, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("feishu: %s: decode response: %w", op, err)
	}
	if env.Code != 0 || resp.StatusCode == http.StatusUnauthorized {
		return &APIError{Op: op, Status: resp.StatusCode, Code: env.Code, Msg: env.Msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("feishu: %s: decode data: %w", op, err)
		}
	}
	return nil
}
