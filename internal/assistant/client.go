// Package assistant bridges user messages to the remote conversational
// endpoint.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/maternity/internal/domain"
)

// FallbackReply is returned when the endpoint answers with a shape we do not
// recognize. Callers show it instead of crashing.
const FallbackReply = "No response"

// Client posts a message plus identity metadata to the assistant endpoint
// and extracts the reply text.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient constructs an assistant client.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type bridgeRequest struct {
	Message string              `json:"message"`
	User    bridgeUser          `json:"user"`
	History []domain.BridgeTurn `json:"history,omitempty"`
}

type bridgeUser struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Reply forwards the message and returns the assistant's answer. Transport
// failures and non-2xx statuses surface as errors; an unrecognized response
// shape degrades to FallbackReply without an error.
func (c *Client) Reply(ctx context.Context, userID, userName, message string, history []domain.BridgeTurn) (string, error) {
	body, err := json.Marshal(bridgeRequest{
		Message: message,
		User:    bridgeUser{Name: userName, ID: userID},
		History: history,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("assistant returned %d: %s", resp.StatusCode, raw)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return extractReply(raw), nil
}

// extractReply tolerates the response shapes the endpoint has been observed
// to produce: an object keyed by reply/message/text/response, a bare JSON
// string, or plain text.
func extractReply(raw []byte) string {
	var shaped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shaped); err == nil {
		for _, key := range []string{"reply", "message", "text", "response"} {
			value, ok := shaped[key]
			if !ok {
				continue
			}
			var text string
			if err := json.Unmarshal(value, &text); err == nil && strings.TrimSpace(text) != "" {
				return text
			}
		}
		return FallbackReply
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && strings.TrimSpace(bare) != "" {
		return bare
	}

	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return FallbackReply
}
