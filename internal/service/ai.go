package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/rs/zerolog/log"
)

// AIAnalyzer is the AI collaborator consumed by the recommendation engine
type AIAnalyzer interface {
	AnalyzeRequest(ctx context.Context, description string) (*domain.AIAnalysis, error)
	AvailableProviders() []string
}

// AIService turns request descriptions into step plans through the LLM router
type AIService struct {
	llmRouter *llm.Router
	timeout   time.Duration
}

var _ AIAnalyzer = (*AIService)(nil)

// NewAIService creates a new AI service
func NewAIService(llmRouter *llm.Router, timeout time.Duration) *AIService {
	return &AIService{
		llmRouter: llmRouter,
		timeout:   timeout,
	}
}

// AnalyzeRequest asks the default provider for a plan
func (s *AIService) AnalyzeRequest(ctx context.Context, description string) (*domain.AIAnalysis, error) {
	return s.AnalyzeRequestFor(ctx, description, "")
}

// AnalyzeRequestFor routes the analysis to the provider best suited to taskType,
// falling back to the default provider when that one is not configured
func (s *AIService) AnalyzeRequestFor(ctx context.Context, description, taskType string) (*domain.AIAnalysis, error) {
	provider, err := s.pickProvider(taskType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := provider.Complete(ctx, llm.PlanRequest(description), "")
	if err != nil {
		return nil, fmt.Errorf("failed to analyze request with %s: %w", provider.Name(), err)
	}

	analysis, err := llm.ParseAnalysis(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s analysis: %w", provider.Name(), err)
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("steps", len(analysis.Plan)).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Request analyzed")

	return analysis, nil
}

// DraftContract writes a service contract for the given project details.
// Contracts go to the legal-drafting provider when it is configured.
func (s *AIService) DraftContract(ctx context.Context, details string) (*domain.ContractDraft, error) {
	provider, err := s.pickProvider("contract")
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := provider.Complete(ctx, llm.ContractRequest(details), "")
	if err != nil {
		return nil, fmt.Errorf("failed to draft contract with %s: %w", provider.Name(), err)
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Contract drafted")

	return &domain.ContractDraft{ContractContent: strings.TrimSpace(resp.Content)}, nil
}

// GenerateResponse produces the assistant's next chat reply given the
// conversation so far and a description of the request it concerns
func (s *AIService) GenerateResponse(ctx context.Context, conversation []domain.Message, requestContext string) (string, error) {
	provider, err := s.pickProvider("")
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := provider.Complete(ctx, llm.ChatRequest(conversation, requestContext), "")
	if err != nil {
		return "", fmt.Errorf("failed to generate response with %s: %w", provider.Name(), err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return llm.FallbackReply, nil
	}
	return reply, nil
}

func (s *AIService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *AIService) pickProvider(taskType string) (llm.Provider, error) {
	preferred := ""
	if taskType != "" {
		preferred = RecommendedProvider(taskType)
	}
	return s.llmRouter.Resolve(preferred)
}

// AvailableProviders lists providers whose credentials are configured
func (s *AIService) AvailableProviders() []string {
	return s.llmRouter.ListProviders()
}

// RecommendedProvider maps a task type to the provider suited to it
func RecommendedProvider(taskType string) string {
	switch strings.ToLower(taskType) {
	case "contract", "legal", "document-analysis":
		return "anthropic"
	case "research", "information-retrieval":
		return "perplexity"
	case "technical", "coding":
		return "xai"
	case "math", "algorithm", "reasoning":
		return "deepseek"
	case "multimodal", "translation":
		return "gemini"
	case "private", "offline":
		return "ollama"
	default:
		return "openai"
	}
}
