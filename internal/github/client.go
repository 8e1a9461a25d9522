// Package github posts pull-request comments through the comments URL
// carried in the event payload.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client issues authenticated requests against the GitHub API.
type Client struct {
	Token      string
	HTTPClient *http.Client
}

// PostComment submits a single comment to the given comments endpoint.
func (c *Client) PostComment(ctx context.Context, commentsURL, body string) error {
	if strings.TrimSpace(commentsURL) == "" {
		return fmt.Errorf("comments URL is empty")
	}
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, commentsURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("post comment to %s failed: %s", commentsURL, msg)
	}
	return nil
}
