package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const anthropicVersion = "2023-06-01"

// CompletionOptions tune a single completion request.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completer is the single entry point into the generative-text service.
// The pipeline components take this interface so tests can substitute a
// canned completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// Client calls the Anthropic messages API.
type Client struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ Completer = (*Client)(nil)

// NewClient builds an Anthropic client. baseURL is normally
// https://api.anthropic.com; tests point it at a local server.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

// Complete sends one user message and returns the text of the first
// content block.
func (c *Client) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	req := messagesRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	var resp messagesResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.baseURL + "/v1/messages")

	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s: %s", resp.Error.Type, resp.Error.Message)
	}

	if httpResp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from messages API", httpResp.StatusCode())
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Content[0].Text, nil
}
