package llm

import "context"

// Request contains a single completion exchange
type Request struct {
	System string
	Prompt string
	// JSON asks the provider for a JSON object response when it supports it
	JSON bool
}

// Response contains LLM generation result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete sends the prompt and returns the raw model output
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
