// Package completion is the HTTP client for the external text-completion
// service. The boundary contract is deliberately thin: POST a messages array,
// receive {"completion": "..."} where the completion text may be wrapped in a
// markdown code fence. Everything beyond that is the caller's parsing problem.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultTimeout = 180 * time.Second // completions for full schedules can be slow
	retryBaseDelay = time.Second
)

// Message is one chat-style message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles accepted by the completion service.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type completionRequest struct {
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// Client calls the completion service with bounded retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
}

// NewClient returns a Client for the given endpoint. maxRetries bounds the
// number of attempts for transport-level failures; values below 1 mean a
// single attempt.
func NewClient(baseURL string, maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		maxRetries: maxRetries,
	}
}

// Complete posts the messages and returns the raw completion text.
// Transport errors and 5xx responses are retried with exponential backoff;
// 4xx responses fail immediately. The in-flight request is cancelled when ctx is.
func (c *Client) Complete(ctx context.Context, msgs []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("completion: marshal request: %w", err)
	}

	delay := retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		text, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("completion: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("completion: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("completion: post: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("completion: unexpected status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("completion: decode response: %w", err)
	}
	return out.Completion, false, nil
}

var fenceRe = regexp.MustCompile("```(?:json)?\n?|\n?```")

// StripFences removes markdown code-fence wrapping from a completion payload
// and trims surrounding whitespace. Completions frequently arrive as
// ```json\n...\n``` despite the "JSON only" system instruction.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
