// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feishu talks to the Feishu open platform: bearer-token
// management, bitable tables and records, bot chats, and messages. The
// sync engine and the digest notifier sit on top of the same client.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// tokenExpiryMargin retires a cached token this long before its declared
// expiry to dodge boundary races.
const tokenExpiryMargin = 5 * time.Minute

// defaultTokenTTL is assumed for tokens whose lifetime is unknown: the
// upstream default for tenant tokens.
const defaultTokenTTL = 7200 * time.Second

const tokenPlaceholder = "xxxx"

// TokenManager exchanges app credentials for tenant access tokens and
// caches them. A configured user token is returned as-is and never
// refreshed. The mutex serializes refreshers so concurrent callers
// witness at most one in-flight exchange.
type TokenManager struct {
	cfg  types.FeishuConfig
	http *http.Client

	mu       sync.Mutex
	cached   string
	expireAt time.Time
	now      func() time.Time
}

// NewTokenManager returns a TokenManager over the given credentials. A
// config-supplied tenant token seeds the cache as if freshly issued.
func NewTokenManager(cfg types.FeishuConfig, client *http.Client) *TokenManager {
	m := &TokenManager{cfg: cfg, http: client, now: time.Now}
	if seed := realToken(cfg.TenantAccessToken); seed != "" {
		m.cached = seed
		m.expireAt = m.now().Add(defaultTokenTTL)
	}
	return m
}

// realToken filters out empty and placeholder credential values.
func realToken(v string) string {
	if v == "" || v == tokenPlaceholder {
		return ""
	}
	return v
}

// Token returns a bearer token, fetching a fresh tenant token when the
// cache is empty or inside the expiry margin. It never blocks longer
// than one network round-trip.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if t := realToken(m.cfg.UserAccessToken); t != "" {
		return t, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != "" && m.now().Before(m.expireAt.Add(-tokenExpiryMargin)) {
		return m.cached, nil
	}
	return m.fetchLocked(ctx)
}

// ForceRefresh invalidates the cache and fetches a new tenant token.
// With a user token configured there is nothing to refresh and the call
// succeeds immediately.
func (m *TokenManager) ForceRefresh(ctx context.Context) error {
	if realToken(m.cfg.UserAccessToken) != "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = ""
	m.expireAt = time.Time{}
	_, err := m.fetchLocked(ctx)
	return err
}

func (m *TokenManager) fetchLocked(ctx context.Context) (string, error) {
	if m.cfg.AppID == "" || m.cfg.AppSecret == "" {
		return "", fmt.Errorf("feishu: app_id and app_secret are required for the token exchange")
	}

	payload, err := json.Marshal(map[string]string{
		"app_id":     m.cfg.AppID,
		"app_secret": m.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("feishu: encode token request: %w", err)
	}

	url := feishuAPIBase + "/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("feishu: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("feishu: token exchange: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("feishu: decode token response: %w", err)
	}
	if body.Code != 0 {
		return "", &APIError{Op: "tenant_access_token", Status: resp.StatusCode, Code: body.Code, Msg: body.Msg}
	}
	if body.TenantAccessToken == "" {
		return "", fmt.Errorf("feishu: token exchange returned an empty token")
	}

	ttl := time.Duration(body.Expire) * time.Second
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	m.cached = body.TenantAccessToken
	m.expireAt = m.now().Add(ttl)
	return m.cached, nil
}
