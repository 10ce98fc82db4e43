// Package answers provides a client for OpenAI-compatible Responses APIs
// with web search enabled.
package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	maxRetryAttempts = 3
	initialBackoff   = 500 * time.Millisecond
)

// Client asks web-grounded questions against the Responses API. Ask
// returns the provider's raw response body so callers can store the
// payload verbatim and re-derive results later.
type Client interface {
	Ask(ctx context.Context, query string) (string, error)
}

// request is the body for POST /responses.
type request struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Tools []tool `json:"tools,omitempty"`
}

type tool struct {
	Type string `json:"type"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates a Responses API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Ask(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(request{
		Model: c.model,
		Input: query,
		Tools: []tool{{Type: "web_search"}},
	})
	if err != nil {
		return "", eris.Wrap(err, "answers: marshal request")
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		respBody, status, err := c.post(ctx, body)
		if err != nil {
			return "", err
		}
		if status == http.StatusOK {
			return string(respBody), nil
		}

		lastErr = eris.Errorf("answers: unexpected status %d: %s", status, string(respBody))
		if !retryable(status) || attempt == maxRetryAttempts {
			return "", lastErr
		}

		select {
		case <-ctx.Done():
			return "", eris.Wrap(ctx.Err(), "answers: retry wait")
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", lastErr
}

func (c *httpClient) post(ctx context.Context, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, 0, eris.Wrap(err, "answers: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, eris.Wrap(err, "answers: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "answers: read response")
	}
	return respBody, resp.StatusCode, nil
}

// retryable reports whether a status code is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
