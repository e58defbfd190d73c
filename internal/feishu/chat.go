// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// chatCacheTTL bounds how stale the cached member-chat list may be.
// Broadcast targets change rarely; a batch run reuses one listing.
const chatCacheTTL = 5 * time.Minute

// Chat is one group chat the bot is a member of.
type Chat struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// ListChats returns every chat the bot belongs to, caching the listing
// for a few minutes.
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()
	if !c.chatsAt.IsZero() && c.now().Sub(c.chatsAt) < chatCacheTTL {
		return c.chats, nil
	}

	var chats []Chat
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("page_size", "100")
		q.Set("membership", "member")
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		var page struct {
			HasMore   bool   `json:"has_more"`
			PageToken string `json:"page_token"`
			Items     []Chat `json:"items"`
		}
		if err := c.doJSON(ctx, "list chats", http.MethodGet, "/im/v1/chats", q, nil, &page); err != nil {
			return nil, err
		}
		chats = append(chats, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			break
		}
		pageToken = page.PageToken
	}

	c.chats = chats
	c.chatsAt = c.now()
	return chats, nil
}

// SendMessage delivers one message to a chat. content is the
// msg_type-specific structure; the platform wants it JSON-encoded into
// a string member of the outer payload.
func (c *Client) SendMessage(ctx context.Context, chatID, msgType string, content any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("feishu: encode message content: %w", err)
	}
	payload := map[string]string{
		"receive_id": chatID,
		"msg_type":   msgType,
		"content":    string(raw),
	}
	q := url.Values{}
	q.Set("receive_id_type", "chat_id")
	return c.doJSON(ctx, "send message", http.MethodPost, "/im/v1/messages", q, payload, nil)
}
