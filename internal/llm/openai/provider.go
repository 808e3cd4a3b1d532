// Package openai talks to the OpenAI chat completions API and to the
// providers that expose the same endpoint shape (Perplexity, xAI, DeepSeek).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
)

// Provider implements llm.Provider for OpenAI-compatible chat endpoints
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	models       []string
	client       *http.Client
	baseURL      string
	// jsonMode is false for endpoints that reject response_format
	jsonMode bool
}

// Option customizes a Provider
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.client = client }
}

// NewProvider creates a provider called name against cfg.BaseURL
func NewProvider(name string, cfg config.OpenAIConfig, models []string, opts ...Option) *Provider {
	p := &Provider{
		name:         name,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.Model,
		models:       models,
		client:       &http.Client{Timeout: 120 * time.Second},
		baseURL:      cfg.BaseURL,
		jsonMode:     name == "openai" || name == "deepseek",
	}
	if p.defaultModel == "" && len(models) > 0 {
		p.defaultModel = models[0]
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOpenAI creates the OpenAI provider
func NewOpenAI(cfg config.OpenAIConfig, opts ...Option) *Provider {
	return NewProvider("openai", cfg, []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4"}, opts...)
}

// NewPerplexity creates the Perplexity provider
func NewPerplexity(cfg config.OpenAIConfig, opts ...Option) *Provider {
	return NewProvider("perplexity", cfg, []string{"sonar", "sonar-pro", "sonar-reasoning"}, opts...)
}

// NewXAI creates the xAI provider
func NewXAI(cfg config.OpenAIConfig, opts ...Option) *Provider {
	return NewProvider("xai", cfg, []string{"grok-2-latest", "grok-beta"}, opts...)
}

// NewDeepSeek creates the DeepSeek provider
func NewDeepSeek(cfg config.OpenAIConfig, opts ...Option) *Provider {
	return NewProvider("deepseek", cfg, []string{"deepseek-chat", "deepseek-reasoner"}, opts...)
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return p.models
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != "" && p.baseURL != ""
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends a chat completion request
func (p *Provider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	chatReq := chatRequest{
		Model:       model,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, chatMessage{Role: "system", Content: req.System})
	}
	chatReq.Messages = append(chatReq.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.JSON && p.jsonMode {
		chatReq.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return &llm.Response{
		Content:    chatResp.Choices[0].Message.Content,
		Model:      model,
		TokensUsed: chatResp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
