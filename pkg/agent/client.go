// Package agent forwards quiz and research requests to the external agent service.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse means the agent answered without a "response" field.
	ErrEmptyResponse = errors.New("agent returned no response")
	// ErrUnavailable wraps transport failures and non-2xx statuses.
	ErrUnavailable = errors.New("agent service unavailable")
)

type QuizRequest struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	NoOfQuestions int    `json:"no_of_questions"`
	Topic         string `json:"topic"`
}

type ResearchRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Query    string `json:"query"`
}

type agentResponse struct {
	Response json.RawMessage `json:"response"`
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Quiz returns the agent's "response" payload unchanged.
func (c *Client) Quiz(ctx context.Context, req QuizRequest) (json.RawMessage, error) {
	return c.post(ctx, "/quiz/", req)
}

func (c *Client) Research(ctx context.Context, req ResearchRequest) (json.RawMessage, error) {
	return c.post(ctx, "/research/", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	var out agentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Response) == 0 || string(out.Response) == "null" || string(out.Response) == `""` {
		return nil, ErrEmptyResponse
	}
	return out.Response, nil
}
