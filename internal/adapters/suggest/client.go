// Package suggest pre-fills the episode scoring grid with AI-generated
// suggestions. The commissioner pastes an optional recap, the model returns
// a structured grid keyed by rule_key, and a validation pass clamps every
// value before anything reaches the scoring path.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// APIEndpoint is the Anthropic Messages API endpoint.
	APIEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// APIVersion is the Anthropic API version header value.
	APIVersion = "2023-06-01"

	maxTokens = 4096
)

// Client is a minimal Anthropic Messages API client.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the hard deadline for one API call.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// NewClient creates an API client. The key may be empty; calls then fail
// with ErrDisabled.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		model:    DefaultModel,
		endpoint: APIEndpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// complete sends one system+user exchange and returns the concatenated text
// content of the reply.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	reqBody, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", APIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", errors.Wrap(ErrTimeout, err.Error())
		}
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrUpstream, "status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrapf(ErrUnparsable, "bad response envelope: %v", err)
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.Wrap(ErrUnparsable, "no text content in response")
	}
	return text.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// stripCodeFences removes a surrounding markdown code fence, which models
// sometimes emit despite instructions.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimRight(cleaned[:len(cleaned)-3], " \t\r\n")
	}
	return cleaned
}
