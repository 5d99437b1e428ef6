package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"resume-insight/internal/llm"
)

const defaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"

const systemPrompt = "You are an expert career assistant. Respond with JSON only. No markdown. Never omit keys. Output must match the requested schema exactly."

const defaultTimeout = 45 * time.Second

// Client implements llm.Client against Groq's OpenAI-compatible chat
// completions endpoint.
type Client struct {
	apiKey        string
	apiURL        string
	fallbackModel string
	httpClient    *http.Client
}

// NewClient constructs a Groq client. An empty API key is a configuration
// error surfaced before any network call.
func NewClient(apiKey string, timeout time.Duration, fallbackModel string) (*Client, error) {
	return NewClientWithURL(apiKey, defaultAPIURL, timeout, fallbackModel)
}

// NewClientWithURL is NewClient with an explicit endpoint, for tests.
func NewClientWithURL(apiKey, apiURL string, timeout time.Duration, fallbackModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required: %w", llm.ErrMissingCredential)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:        apiKey,
		apiURL:        apiURL,
		fallbackModel: strings.TrimSpace(fallbackModel),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete performs one chat completion. A model that the provider reports
// as unknown or decommissioned is retried once with the configured fallback
// model, mirroring the product's "safe model" behavior.
func (c *Client) Complete(ctx context.Context, prompt string, opts llm.Options) (llm.Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.fallbackModel
	}

	resp, err := c.completeOnce(ctx, prompt, model, opts)
	if err == nil {
		return resp, nil
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) && isModelUnavailable(perr) && c.fallbackModel != "" && c.fallbackModel != model {
		log.Printf("groq model %q unavailable, falling back to %q", model, c.fallbackModel)
		return c.completeOnce(ctx, prompt, c.fallbackModel, opts)
	}
	return llm.Response{}, err
}

func (c *Client) completeOnce(ctx context.Context, prompt, model string, opts llm.Options) (llm.Response, error) {
	temp := opts.Temperature
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    &temp,
		MaxTokens:      opts.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return llm.Response{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Response{}, fmt.Errorf("groq request timeout: %w", err)
		}
		return llm.Response{}, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return llm.Response{}, err
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return llm.Response{}, providerError(httpResp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Response{}, fmt.Errorf("groq response parse: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("groq response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return llm.Response{}, fmt.Errorf("groq response empty content")
	}

	out := llm.Response{
		Text:    content,
		Model:   parsed.Model,
		Elapsed: time.Since(start),
	}
	if out.Model == "" {
		out.Model = model
	}
	if parsed.Usage != nil {
		out.PromptTokens = parsed.Usage.PromptTokens
		out.CompletionTokens = parsed.Usage.CompletionTokens
		out.TotalTokens = parsed.Usage.TotalTokens
		log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
			out.Model, out.PromptTokens, out.CompletionTokens, out.TotalTokens)
	}
	return out, nil
}

func providerError(status int, body []byte) error {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &llm.ProviderError{
			StatusCode: status,
			Code:       firstNonEmpty(parsed.Error.Code, parsed.Error.Type),
			Message:    parsed.Error.Message,
		}
	}
	return &llm.ProviderError{
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}
}

func isModelUnavailable(perr *llm.ProviderError) bool {
	switch perr.Code {
	case "model_not_found", "model_decommissioned":
		return true
	}
	return perr.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(perr.Message), "model")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ llm.Client = (*Client)(nil)
