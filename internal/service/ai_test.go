package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name       string
	configured bool
	content    string
	err        error
	calls      int
	lastReq    llm.Request
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) AvailableModels() []string { return []string{"test-model"} }
func (f *fakeProvider) DefaultModel() string      { return "test-model" }
func (f *fakeProvider) IsConfigured() bool        { return f.configured }

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, Model: "test-model"}, nil
}

const planJSON = "```json\n" + `{
  "plan": [
    {"step": "Collect requirements", "assignedTo": "human", "estimatedHours": 2},
    {"step": "Draft proposal", "assignedTo": "ai", "estimatedHours": 1.5}
  ],
  "costEstimateRange": {"min": 200, "max": 400},
  "summary": "Two step plan"
}` + "\n```"

func TestRecommendedProvider(t *testing.T) {
	tests := map[string]string{
		"contract":              "anthropic",
		"Legal":                 "anthropic",
		"document-analysis":     "anthropic",
		"research":              "perplexity",
		"information-retrieval": "perplexity",
		"coding":                "xai",
		"technical":             "xai",
		"math":                  "deepseek",
		"reasoning":             "deepseek",
		"translation":           "gemini",
		"offline":               "ollama",
		"creative":              "openai",
		"":                      "openai",
	}
	for taskType, want := range tests {
		assert.Equal(t, want, RecommendedProvider(taskType), taskType)
	}
}

func TestAIService_AnalyzeRequest(t *testing.T) {
	openai := &fakeProvider{name: "openai", configured: true, content: planJSON}
	router := llm.NewRouter("openai")
	router.RegisterProvider(openai)

	svc := NewAIService(router, time.Second)

	analysis, err := svc.AnalyzeRequest(context.Background(), "Prepare a sales proposal")
	require.NoError(t, err)
	require.Len(t, analysis.Plan, 2)

	assert.Equal(t, "Collect requirements", analysis.Plan[0].Step)
	assert.True(t, analysis.Plan[0].AssignedTo.IsHuman())
	assert.True(t, analysis.Plan[1].AssignedTo.IsAI())
	assert.Equal(t, 1.5, analysis.Plan[1].EstimatedHours)
	assert.Equal(t, 400.0, analysis.CostEstimateRange.Max)
	assert.True(t, openai.lastReq.JSON)
	assert.Contains(t, openai.lastReq.Prompt, "Prepare a sales proposal")
}

func TestAIService_AnalyzeRequestFor(t *testing.T) {
	t.Run("routes to the recommended provider", func(t *testing.T) {
		openai := &fakeProvider{name: "openai", configured: true, content: planJSON}
		anthropic := &fakeProvider{name: "anthropic", configured: true, content: planJSON}
		router := llm.NewRouter("openai")
		router.RegisterProvider(openai)
		router.RegisterProvider(anthropic)

		_, err := NewAIService(router, 0).AnalyzeRequestFor(context.Background(), "Review the lease", "legal")
		require.NoError(t, err)
		assert.Equal(t, 1, anthropic.calls)
		assert.Equal(t, 0, openai.calls)
	})

	t.Run("falls back to the default when unconfigured", func(t *testing.T) {
		openai := &fakeProvider{name: "openai", configured: true, content: planJSON}
		anthropic := &fakeProvider{name: "anthropic", configured: false}
		router := llm.NewRouter("openai")
		router.RegisterProvider(openai)
		router.RegisterProvider(anthropic)

		_, err := NewAIService(router, 0).AnalyzeRequestFor(context.Background(), "Review the lease", "legal")
		require.NoError(t, err)
		assert.Equal(t, 1, openai.calls)
		assert.Equal(t, 0, anthropic.calls)
	})
}

func TestAIService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no provider", func(t *testing.T) {
		svc := NewAIService(llm.NewRouter("openai"), 0)
		_, err := svc.AnalyzeRequest(ctx, "anything")
		assert.ErrorContains(t, err, "no AI provider available")
	})

	t.Run("provider failure", func(t *testing.T) {
		router := llm.NewRouter("openai")
		router.RegisterProvider(&fakeProvider{name: "openai", configured: true, err: errors.New("429 too many requests")})
		_, err := NewAIService(router, 0).AnalyzeRequest(ctx, "anything")
		assert.ErrorContains(t, err, "429")
	})

	t.Run("unparseable output", func(t *testing.T) {
		router := llm.NewRouter("openai")
		router.RegisterProvider(&fakeProvider{name: "openai", configured: true, content: "I cannot help with that."})
		_, err := NewAIService(router, 0).AnalyzeRequest(ctx, "anything")
		assert.Error(t, err)
	})
}

func TestAIService_AvailableProviders(t *testing.T) {
	router := llm.NewRouter("openai")
	router.RegisterProvider(&fakeProvider{name: "openai", configured: true})
	router.RegisterProvider(&fakeProvider{name: "gemini", configured: true})
	router.RegisterProvider(&fakeProvider{name: "xai", configured: false})

	assert.Equal(t, []string{"gemini", "openai"}, NewAIService(router, 0).AvailableProviders())
}

func TestAIService_DraftContract(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers anthropic", func(t *testing.T) {
		openai := &fakeProvider{name: "openai", configured: true, content: "openai contract"}
		anthropic := &fakeProvider{name: "anthropic", configured: true, content: "  SERVICE AGREEMENT\n\n1. Scope of work  "}
		router := llm.NewRouter("openai")
		router.RegisterProvider(openai)
		router.RegisterProvider(anthropic)

		draft, err := NewAIService(router, time.Second).DraftContract(ctx, "Website redesign, 6 weeks, $4000")
		require.NoError(t, err)

		assert.Equal(t, "SERVICE AGREEMENT\n\n1. Scope of work", draft.ContractContent)
		assert.Equal(t, 1, anthropic.calls)
		assert.Equal(t, 0, openai.calls)
		assert.Equal(t, llm.ContractSystemPrompt, anthropic.lastReq.System)
		assert.Contains(t, anthropic.lastReq.Prompt, "Website redesign, 6 weeks, $4000")
		assert.False(t, anthropic.lastReq.JSON)
	})

	t.Run("falls back to the default", func(t *testing.T) {
		openai := &fakeProvider{name: "openai", configured: true, content: "openai contract"}
		router := llm.NewRouter("openai")
		router.RegisterProvider(openai)
		router.RegisterProvider(&fakeProvider{name: "anthropic", configured: false})

		draft, err := NewAIService(router, 0).DraftContract(ctx, "details")
		require.NoError(t, err)
		assert.Equal(t, "openai contract", draft.ContractContent)
	})

	t.Run("provider failure", func(t *testing.T) {
		router := llm.NewRouter("openai")
		router.RegisterProvider(&fakeProvider{name: "openai", configured: true, err: errors.New("overloaded")})
		_, err := NewAIService(router, 0).DraftContract(ctx, "details")
		assert.ErrorContains(t, err, "failed to draft contract with openai")
	})
}

func TestAIService_GenerateResponse(t *testing.T) {
	ctx := context.Background()
	conversation := []domain.Message{
		{SenderID: "2", Content: "Can you book the venue?", Type: domain.MessageTypeChat},
		{SenderID: "ai", Content: "Which date works for you?", Type: domain.MessageTypeChat},
		{SenderID: "2", Content: "March 3rd", Type: domain.MessageTypeChat},
	}

	t.Run("replies with the transcript and context", func(t *testing.T) {
		openai := &fakeProvider{name: "openai", configured: true, content: " Booked for March 3rd. "}
		router := llm.NewRouter("openai")
		router.RegisterProvider(openai)

		reply, err := NewAIService(router, time.Second).GenerateResponse(ctx, conversation, "Company offsite")
		require.NoError(t, err)

		assert.Equal(t, "Booked for March 3rd.", reply)
		assert.Contains(t, openai.lastReq.System, "Company offsite")
		assert.Equal(t, "Client: Can you book the venue?\nAssistant: Which date works for you?\nClient: March 3rd\nAssistant:", openai.lastReq.Prompt)
	})

	t.Run("empty answer uses the fallback", func(t *testing.T) {
		router := llm.NewRouter("openai")
		router.RegisterProvider(&fakeProvider{name: "openai", configured: true, content: "   "})

		reply, err := NewAIService(router, 0).GenerateResponse(ctx, conversation, "ctx")
		require.NoError(t, err)
		assert.Equal(t, llm.FallbackReply, reply)
	})

	t.Run("no provider", func(t *testing.T) {
		_, err := NewAIService(llm.NewRouter("openai"), 0).GenerateResponse(ctx, conversation, "ctx")
		assert.ErrorIs(t, err, llm.ErrNoProvider)
	})
}
