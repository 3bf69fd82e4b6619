package summary

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

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-3.5-turbo-instruct"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second

	maxSummaryTokens = 100
)

var (
	// ErrAPIKeyRequired means no API key was configured.
	ErrAPIKeyRequired = errors.New("summary: API key required")
	// ErrEmptyCompletion means the API returned no usable text.
	ErrEmptyCompletion = errors.New("summary: empty completion")
)

// Client calls the external completion API to summarize post text.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Config configures the completion client.
type Config struct {
	// APIKey is required for authentication.
	APIKey string

	// Model selects the completion model. Default: DefaultModel.
	Model string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient allows custom HTTP client configuration.
	// Default: http.Client with 30s timeout.
	HTTPClient *http.Client
}

// NewClient creates a completion client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{apiKey: cfg.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

// Summarize asks the completion API for a short summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	requestBody := completionRequest{
		Model:            c.model,
		Prompt:           fmt.Sprintf("Summarize the following text:\n%s\n\nSummary:", text),
		MaxTokens:        maxSummaryTokens,
		Temperature:      0.7,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp completionErrorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("completion API error: %s", errorResp.Error.Message)
		}
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response completionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text = strings.TrimSpace(response.Choices[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Completion API request/response types.

type completionRequest struct {
	Model            string  `json:"model"`
	Prompt           string  `json:"prompt"`
	MaxTokens        int     `json:"max_tokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Text  string `json:"text"`
		Index int    `json:"index"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type completionErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
