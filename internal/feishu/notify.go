// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

const (
	defaultMinPapersThreshold = 1
	defaultMaxRecommended     = 1
	defaultChatDelay          = 500 * time.Millisecond
)

// Notifier broadcasts a run digest to every chat the bot belongs to.
// The digest is rendered twice: a rich interactive card, and a plain
// text fallback for chats that reject the card.
type Notifier struct {
	client *Client
	cfg    types.NotifyConfig
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewNotifier returns a Notifier with config defaults applied.
func NewNotifier(client *Client, cfg types.NotifyConfig) *Notifier {
	if cfg.MinPapersThreshold <= 0 {
		cfg.MinPapersThreshold = defaultMinPapersThreshold
	}
	if cfg.MaxRecommended <= 0 {
		cfg.MaxRecommended = defaultMaxRecommended
	}
	if cfg.ChatDelay <= 0 {
		cfg.ChatDelay = defaultChatDelay
	}
	return &Notifier{client: client, cfg: cfg, now: time.Now, sleep: time.Sleep}
}

// TableLink builds the deep link into a bitable table.
func (n *Notifier) TableLink(tableID string) string {
	link := "https://feishu.cn/base/" + n.client.cfg.AppToken
	if tableID != "" {
		link += "?table=" + tableID
	}
	return link
}

// Notify renders the digest for the given per-profile deltas and sends
// it to every member chat with ChatDelay spacing. A chat that rejects
// the card gets the plain-text form; a chat that rejects both is logged
// and skipped. Returns true when at least one chat accepted.
func (n *Notifier) Notify(ctx context.Context, deltas []types.SyncDelta, tableLinks map[string]string, w io.Writer) bool {
	totalNew := 0
	for _, d := range deltas {
		totalNew += d.NewCount
	}
	if totalNew < n.cfg.MinPapersThreshold {
		fmt.Fprintf(w, "digest skipped: %d new papers, threshold %d\n", totalNew, n.cfg.MinPapersThreshold)
		return false
	}

	chats, err := n.client.ListChats(ctx)
	if err != nil {
		fmt.Fprintf(w, "warning: listing chats: %v\n", err)
		return false
	}
	if len(chats) == 0 {
		fmt.Fprintln(w, "digest skipped: the bot is in no chats")
		return false
	}

	card := n.buildCard(deltas, tableLinks, totalNew)
	text := n.buildText(deltas, tableLinks, totalNew)

	sent := 0
	for i, chat := range chats {
		if i > 0 {
			n.sleep(n.cfg.ChatDelay)
		}
		if err := n.client.SendMessage(ctx, chat.ChatID, "interactive", card); err != nil {
			fmt.Fprintf(w, "warning: card to %q rejected: %v\n", chat.Name, err)
			if err := n.client.SendMessage(ctx, chat.ChatID, "text", map[string]string{"text": text}); err != nil {
				fmt.Fprintf(w, "warning: text to %q rejected: %v\n", chat.Name, err)
				continue
			}
		}
		sent++
	}

	fmt.Fprintf(w, "digest delivered to %d/%d chats\n", sent, len(chats))
	return sent > 0
}

// Card message building blocks.
type cardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type cardElement struct {
	Tag  string    `json:"tag"`
	Text *cardText `json:"text,omitempty"`
}

func mdBlock(content string) cardElement {
	return cardElement{Tag: "div", Text: &cardText{Tag: "lark_md", Content: content}}
}

func divider() cardElement {
	return cardElement{Tag: "hr"}
}

// buildCard renders the interactive digest card: a header, one section
// per profile that gained papers, and a footer.
func (n *Notifier) buildCard(deltas []types.SyncDelta, tableLinks map[string]string, totalNew int) map[string]any {
	elements := []cardElement{
		mdBlock("📚 **ArXiv论文更新通知**"),
		mdBlock(fmt.Sprintf("🕐 %s · 🆕 新增 **%d** 篇论文", n.now().Format("2006-01-02 15:04"), totalNew)),
		divider(),
	}

	for _, d := range deltas {
		if d.NewCount == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "👤 **%s**\n", displayNameOf(d))
		fmt.Fprintf(&b, "🆕 新增 %d 篇 · 表内共 %d 篇", d.NewCount, d.TotalCount)
		for _, sp := range topPapers(d.NewlyInserted, n.cfg.MaxRecommended) {
			fmt.Fprintf(&b, "\n🏆 **推荐论文** (评分: %.2f)\n", sp.Relevance.Score)
			fmt.Fprintf(&b, "📄 [%s](%s)\n", strings.TrimSpace(sp.Paper.Title), paperURL(sp.Paper))
			fmt.Fprintf(&b, "👥 %s", formatAuthors(sp.Paper.Authors))
		}
		if link := tableLinks[d.ProfileID]; link != "" {
			fmt.Fprintf(&b, "\n🔗 [查看完整表格](%s)", link)
		}
		elements = append(elements, mdBlock(b.String()), divider())
	}

	elements = append(elements, mdBlock("🤖 ArXiv论文采集机器人自动推送"))
	return map[string]any{"elements": elements}
}

// buildText renders the same digest as plain text.
func (n *Notifier) buildText(deltas []types.SyncDelta, tableLinks map[string]string, totalNew int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 ArXiv论文更新通知 %s\n", n.now().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "新增 %d 篇论文\n", totalNew)
	for _, d := range deltas {
		if d.NewCount == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: 新增 %d 篇, 共 %d 篇\n", displayNameOf(d), d.NewCount, d.TotalCount)
		for _, sp := range topPapers(d.NewlyInserted, n.cfg.MaxRecommended) {
			fmt.Fprintf(&b, "  推荐: %s (%.2f) %s\n", strings.TrimSpace(sp.Paper.Title), sp.Relevance.Score, paperURL(sp.Paper))
		}
		if link := tableLinks[d.ProfileID]; link != "" {
			fmt.Fprintf(&b, "  表格: %s\n", link)
		}
	}
	b.WriteString("🤖 ArXiv论文采集机器人自动推送")
	return b.String()
}

// topPapers returns the best max papers: highest score first, ties
// broken by newer publication date.
func topPapers(papers []types.ScoredPaper, max int) []types.ScoredPaper {
	if len(papers) == 0 || max <= 0 {
		return nil
	}
	top := make([]types.ScoredPaper, len(papers))
	copy(top, papers)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Relevance.Score != top[j].Relevance.Score {
			return top[i].Relevance.Score > top[j].Relevance.Score
		}
		return top[i].Paper.Published.After(top[j].Paper.Published)
	})
	if len(top) > max {
		top = top[:max]
	}
	return top
}

// displayNameOf recovers the profile display name from its table name.
func displayNameOf(d types.SyncDelta) string {
	if name := strings.TrimSuffix(d.TableName, tableNameSuffix); name != "" {
		return name
	}
	return d.ProfileID
}

func paperURL(p types.Paper) string {
	if p.EntryURL != "" {
		return p.EntryURL
	}
	return "https://arxiv.org/abs/" + p.ID
}

// formatAuthors lists the first three authors, marking longer lists.
func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "未知作者"
	}
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + " 等"
}
