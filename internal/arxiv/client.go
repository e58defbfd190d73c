// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv Atom API with adaptive page sizing and
// date-window batching.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Tests override this to point
// at a local server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "paperwatch/0.1"
	defaultRequestDelay = 3 * time.Second
	defaultMaxRetries   = 3
)

// Client issues paginated queries against the arXiv API, enforcing the
// minimum inter-request spacing.
type Client struct {
	http    *http.Client
	cfg     types.ArxivConfig
	limiter *httputil.Limiter
}

// NewClient returns a Client with defaults applied for unset fields.
func NewClient(cfg types.ArxivConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = defaultRequestDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: httputil.NewLimiter(cfg.RequestDelay),
	}
}

// atomFeed mirrors the arXiv Atom response. Namespaced elements
// (opensearch:totalResults, arxiv:primary_category) match by local name.
type atomFeed struct {
	XMLName      xml.Name    `xml:"feed"`
	TotalResults int         `xml:"totalResults"`
	Entries      []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Published       string         `xml:"published"`
	Updated         string         `xml:"updated"`
	Authors         []atomAuthor   `xml:"author"`
	Links           []atomLink     `xml:"link"`
	PrimaryCategory atomCategory   `xml:"primary_category"`
	Categories      []atomCategory `xml:"category"`
	Comment         string         `xml:"comment"`
	JournalRef      string         `xml:"journal_ref"`
	DOI             string         `xml:"doi"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// fetchPage requests one page of results, newest submissions first.
// It returns the parsed papers and the feed's declared total result count
// (-1 when absent). Entries without an identifier are dropped with a
// warning.
func (c *Client) fetchPage(ctx context.Context, query string, start, pageSize int, w io.Writer) ([]types.Paper, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, -1, err
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, -1, fmt.Errorf("creating arXiv request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.cfg.RequestDelay)
	if err != nil {
		return nil, -1, fmt.Errorf("arXiv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, -1, fmt.Errorf("arXiv API returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, -1, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		p, ok := paperFromEntry(entry)
		if !ok {
			fmt.Fprintf(w, "warning: dropping entry without identifier (%q)\n", collapseSpace(entry.Title))
			continue
		}
		papers = append(papers, p)
	}

	total := feed.TotalResults
	if total == 0 && len(feed.Entries) > 0 {
		total = -1
	}
	return papers, total, nil
}

// paperFromEntry converts one Atom entry. The second return value is false
// when the entry has no usable identifier.
func paperFromEntry(entry atomEntry) (types.Paper, bool) {
	id := entryID(entry.ID)
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:         id,
		Title:      collapseSpace(entry.Title),
		Abstract:   collapseSpace(entry.Summary),
		EntryURL:   entry.ID,
		Comment:    collapseSpace(entry.Comment),
		JournalRef: collapseSpace(entry.JournalRef),
		DOI:        strings.TrimSpace(entry.DOI),
	}

	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	p.PrimaryCategory = entry.PrimaryCategory.Term
	for _, c := range entry.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	// Keep the primary category first.
	if p.PrimaryCategory != "" {
		p.Categories = frontload(p.Categories, p.PrimaryCategory)
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
		p.Updated = t
	}
	if p.Updated.IsZero() {
		p.Updated = p.Published
	}

	for _, l := range entry.Links {
		if l.Title == "pdf" || (l.Rel == "related" && l.Type == "application/pdf") {
			p.PDFURL = l.Href
			break
		}
	}
	if p.PDFURL == "" {
		p.PDFURL = "https://arxiv.org/pdf/" + id
	}

	return p, true
}

// entryID extracts the final path segment of the entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v2" -> "2301.07041v2").
func entryID(entryURL string) string {
	s := strings.TrimRight(strings.TrimSpace(entryURL), "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// frontload moves term to the front of list, inserting it if absent.
func frontload(list []string, term string) []string {
	for i, v := range list {
		if v == term {
			if i == 0 {
				return list
			}
			out := make([]string, 0, len(list))
			out = append(out, term)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return append([]string{term}, list...)
}

// collapseSpace trims and collapses runs of whitespace, including the
// newline-and-indent wrapping the feed applies to titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
