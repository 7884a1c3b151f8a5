// Package deepseek implements pkg/llm's Summarizer and Answerer against
// DeepSeek's OpenAI-compatible chat-completions API.
package deepseek

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

	"github.com/pinholabs/sitelog/pkg/llm"
)

const (
	// DefaultBaseURL is the default DeepSeek API URL.
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is the default chat model.
	DefaultModel = "deepseek-chat"

	// DefaultTimeout bounds every chat-completion round-trip. The caller
	// treats a timeout like any other collaborator failure.
	DefaultTimeout = 30 * time.Second
)

// ErrEmptyResponse indicates the API returned no choices.
var ErrEmptyResponse = errors.New("empty completion response")

// Client wraps DeepSeek's chat-completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the DeepSeek client.
type Config struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the bearer token for the API.
	APIKey string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// Timeout bounds each request. Defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completion response we consume.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new DeepSeek chat-completions client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("deepseek: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

const summarizeSystem = `You are an assistant that condenses construction-project notes.
Reply with a JSON object holding exactly two short string fields:
"context" (one sentence of situational context) and
"key_change" (the single most important change or fact in the note).
Reply with the JSON object only, no prose.`

// Summarize derives a short context/key-change pair from the message.
// A malformed or non-JSON reply is returned as an error; the ingestion
// service substitutes its fallback enrichment in that case.
func (c *Client) Summarize(ctx context.Context, message string) (*llm.Summary, error) {
	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: summarizeSystem},
		{Role: "user", Content: message},
	})
	if err != nil {
		return nil, err
	}

	summary := &llm.Summary{}
	if err := json.Unmarshal([]byte(extractJSON(content)), summary); err != nil {
		return nil, fmt.Errorf("parsing summary reply: %w", err)
	}

	if summary.Context == "" && summary.KeyChange == "" {
		return nil, errors.New("summary reply missing both fields")
	}

	return summary, nil
}

const answerSystem = `You are an assistant specialized in analyzing construction-project data.
Answer clearly and directly, based only on the data provided.`

// Ask answers an open-ended question given the schema and sample digests.
func (c *Client) Ask(ctx context.Context, question, schema, samples string) (string, error) {
	prompt := fmt.Sprintf(
		"Based on the data below, answer the question.\n\n%s\n\n%s\n\nQuestion: %s\n",
		schema, samples, question,
	)

	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: answerSystem},
		{Role: "user", Content: prompt},
	})
}

// complete performs one chat-completion round-trip and returns the first
// choice's message content.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   1000,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON strips any prose or code fences around a JSON object so that
// mildly decorated model replies still parse.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

var (
	_ llm.Summarizer = (*Client)(nil)
	_ llm.Answerer   = (*Client)(nil)
)
