package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers a follow-up prompt to a running remote coding agent.
type Sender interface {
	SendFollowup(ctx context.Context, agentID, prompt string) error
}

// CloudClient is a minimal client for the background-agent follow-up API.
type CloudClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

// NewCloudClient creates a client. It fails when no API key is given.
func NewCloudClient(baseURL *url.URL, apiKey string, timeout time.Duration) (*CloudClient, error) {
	if baseURL == nil {
		return nil, errors.New("agent api url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("agent api key is required")
	}
	return &CloudClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type followupRequest struct {
	Prompt followupPrompt `json:"prompt"`
}

type followupPrompt struct {
	Text string `json:"text"`
}

// SendFollowup posts prompt to /v0/agents/{agentID}/followup. Any non-2xx
// status is an error carrying the status and a truncated body.
func (c *CloudClient) SendFollowup(ctx context.Context, agentID, prompt string) error {
	if strings.TrimSpace(agentID) == "" {
		return errors.New("agent id is required")
	}

	payload, err := json.Marshal(followupRequest{Prompt: followupPrompt{Text: prompt}})
	if err != nil {
		return fmt.Errorf("failed to marshal followup request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("v0", "agents", url.PathEscape(agentID), "followup")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create followup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("followup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("followup non-success status=%d body=%s", resp.StatusCode, truncate(string(body), 400))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
