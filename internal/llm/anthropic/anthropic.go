// Package anthropic implements the claude gateway over Anthropic's legacy
// Text Completions API, which takes the Human/Assistant turn-delimited
// prompt produced by the prompt package.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"solver-relay/internal/llm"
	"solver-relay/internal/prompt"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	completePath   = "/v1/complete"

	// apiVersion pins the wire format; Anthropic versions responses via
	// this header rather than the URL.
	apiVersion = "2023-06-01"
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at a proxy or test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(strings.TrimSpace(u), "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "claude" }

type completeRequest struct {
	Model             string `json:"model"`
	Prompt            string `json:"prompt"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

type completeResponse struct {
	Completion string `json:"completion"`
}

// Complete performs a single completion attempt. Every failure comes back
// as a *llm.ProviderError so the orchestrator can isolate it per provider.
func (c *Client) Complete(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error) {
	raw, err := c.complete(ctx, p, maxTokens)
	if err != nil {
		return "", &llm.ProviderError{Provider: c.Name(), Err: err}
	}
	return raw, nil
}

func (c *Client) complete(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY is empty")
	}
	payload, _ := json.Marshal(completeRequest{
		Model:             c.model,
		Prompt:            p.Raw,
		MaxTokensToSample: maxTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completePath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("anthropic complete %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out completeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Completion) == "" {
		return "", fmt.Errorf("anthropic complete: empty completion")
	}
	return out.Completion, nil
}
