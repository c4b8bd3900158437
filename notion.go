package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Notion Task Source ---

const (
	notionAPIBase = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
)

// taskSource yields all raw records from the task database.
type taskSource interface {
	QueryTasks(ctx context.Context) ([]RawTaskRecord, error)
}

// NotionClient queries a single task database. It never mutates anything;
// all filtering happens client-side.
type NotionClient struct {
	apiKey     string
	databaseID string
	baseURL    string
	client     *http.Client
}

func newNotionClient(cfg *Config) *NotionClient {
	return &NotionClient{
		apiKey:     cfg.NotionAPIKey,
		databaseID: cfg.DatabaseID,
		baseURL:    notionAPIBase,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type notionQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
}

type notionQueryResponse struct {
	Results []struct {
		Properties RawTaskRecord `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryTasks fetches every record in the database, following cursor
// pagination until the source reports no more pages. Each page is one
// attempt; there are no retries.
func (n *NotionClient) QueryTasks(ctx context.Context) ([]RawTaskRecord, error) {
	var records []RawTaskRecord
	cursor := ""
	for {
		page, err := n.queryPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			records = append(records, r.Properties)
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return records, nil
}

func (n *NotionClient) queryPage(ctx context.Context, cursor string) (*notionQueryResponse, error) {
	var body io.Reader
	if cursor != "" {
		b, _ := json.Marshal(notionQueryRequest{StartCursor: cursor})
		body = bytes.NewReader(b)
	}

	url := fmt.Sprintf("%s/databases/%s/query", n.baseURL, n.databaseID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("notion query: HTTP %d: %s", resp.StatusCode, string(b))
	}

	var page notionQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("notion response: %w", err)
	}
	return &page, nil
}
