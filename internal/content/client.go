// Package content fetches curated trimester records from the remote content
// store.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"example.com/maternity/internal/domain"
	"example.com/maternity/internal/observability"
)

// Client reads trimester content over HTTP. Any failure degrades to the
// hard-coded default set so the trimester structure is always available.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a content client. An empty base URL produces a client
// that always serves the fallback set.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type trimesterRecord struct {
	ID         string   `json:"id"`
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	WeeksRange string   `json:"weeks_range"`
	Summary    string   `json:"summary"`
	Checklist  []string `json:"checklist"`
	DoctorTips []string `json:"doctor_tips"`
}

// Trimesters returns the remote trimester records ordered by index
// ascending, or the built-in defaults when the store is unreachable, empty,
// or malformed.
func (c *Client) Trimesters(ctx context.Context) ([]domain.Trimester, error) {
	if c.baseURL == "" {
		observability.RecordContentFallback()
		return domain.DefaultTrimesters(), nil
	}

	records, err := c.fetch(ctx)
	if err != nil || len(records) == 0 {
		observability.RecordContentFallback()
		return domain.DefaultTrimesters(), nil
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })

	out := make([]domain.Trimester, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Trimester{
			ID:         rec.ID,
			Index:      rec.Index,
			Title:      rec.Title,
			WeeksRange: rec.WeeksRange,
			Summary:    rec.Summary,
			Checklist:  rec.Checklist,
			DoctorTips: rec.DoctorTips,
		})
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context) ([]trimesterRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/trimesters", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("content store returned %d", resp.StatusCode)
	}

	var payload struct {
		Items []trimesterRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}
