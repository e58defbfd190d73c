// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feishu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// listPageSize is the record page size; the platform caps pages at 500.
const listPageSize = 500

// Table is one bitable table in the configured base.
type Table struct {
	TableID  string `json:"table_id"`
	Revision int    `json:"revision,omitempty"`
	Name     string `json:"name"`
}

// TableField describes one column in a create-table request.
type TableField struct {
	FieldName string         `json:"field_name"`
	Type      int            `json:"type"`
	Property  map[string]any `json:"property,omitempty"`
}

// Record is one bitable row as the list endpoint returns it. Cell
// values arrive dynamically typed: hyperlink cells decode to maps with
// "text" and "link" members, plain text cells to strings.
type Record struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

// ListTables returns every table in the configured bitable base.
func (c *Client) ListTables(ctx context.Context) ([]Table, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables", c.cfg.AppToken)

	var tables []Table
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("page_size", "100")
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		var page struct {
			HasMore   bool    `json:"has_more"`
			PageToken string  `json:"page_token"`
			Items     []Table `json:"items"`
		}
		if err := c.doJSON(ctx, "list tables", http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		tables = append(tables, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return tables, nil
		}
		pageToken = page.PageToken
	}
}

// FindTableByName resolves a table name to its ID. Missing tables
// surface as ErrTableNotFound so callers can create them.
func (c *Client) FindTableByName(ctx context.Context, name string) (string, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range tables {
		if t.Name == name {
			return t.TableID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTableNotFound, name)
}

// CreateTable creates a table with the given columns and returns its
// ID. The default grid view keeps the platform's customary name.
func (c *Client) CreateTable(ctx context.Context, name string, fields []TableField) (string, error) {
	payload := map[string]any{
		"table": map[string]any{
			"name":              name,
			"default_view_name": "表格视图",
			"fields":            fields,
		},
	}
	var data struct {
		TableID string `json:"table_id"`
	}
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables", c.cfg.AppToken)
	if err := c.doJSON(ctx, "create table", http.MethodPost, path, nil, payload, &data); err != nil {
		return "", err
	}
	if data.TableID == "" {
		return "", fmt.Errorf("feishu: create table %q: response carried no table_id", name)
	}
	return data.TableID, nil
}

// ListRecords pages through every row of a table.
func (c *Client) ListRecords(ctx context.Context, tableID string) ([]Record, error) {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", c.cfg.AppToken, tableID)

	var records []Record
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(listPageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		var page struct {
			HasMore   bool     `json:"has_more"`
			PageToken string   `json:"page_token"`
			Items     []Record `json:"items"`
		}
		if err := c.doJSON(ctx, "list records", http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Items...)
		if !page.HasMore || page.PageToken == "" {
			return records, nil
		}
		pageToken = page.PageToken
	}
}

// InsertRecord appends one row and returns its record ID.
func (c *Client) InsertRecord(ctx context.Context, tableID string, fields types.RowFields) (string, error) {
	var data struct {
		Record struct {
			RecordID string `json:"record_id"`
		} `json:"record"`
	}
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", c.cfg.AppToken, tableID)
	payload := map[string]any{"fields": fields}
	if err := c.doJSON(ctx, "insert record", http.MethodPost, path, nil, payload, &data); err != nil {
		return "", err
	}
	return data.Record.RecordID, nil
}

// BatchCreateRecords appends one batch of rows in a single call and
// returns how many the platform accepted.
func (c *Client) BatchCreateRecords(ctx context.Context, tableID string, rows []types.RowFields) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		records = append(records, map[string]any{"fields": row})
	}
	var data struct {
		Records []Record `json:"records"`
	}
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records/batch_create", c.cfg.AppToken, tableID)
	if err := c.doJSON(ctx, "batch create records", http.MethodPost, path, nil, map[string]any{"records": records}, &data); err != nil {
		return 0, err
	}
	return len(data.Records), nil
}

// UpdateRecord overwrites the given fields of one row, leaving every
// other column untouched.
func (c *Client) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]any) error {
	path := fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records/%s", c.cfg.AppToken, tableID, recordID)
	return c.doJSON(ctx, "update record", http.MethodPut, path, nil, map[string]any{"fields": fields}, nil)
}
