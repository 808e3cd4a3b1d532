package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/llm/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Complete(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"summary\":\"ok\"}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	p := openai.NewOpenAI(config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.True(t, p.IsConfigured())

	resp, err := p.Complete(context.Background(), llm.PlanRequest("Organize a workshop"), "")
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, resp.Content)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "gpt-4o", received["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, received["response_format"])
}

func TestProvider_CompatibleEndpoints(t *testing.T) {
	perplexity := openai.NewPerplexity(config.OpenAIConfig{BaseURL: "https://api.perplexity.ai"})
	assert.Equal(t, "perplexity", perplexity.Name())
	assert.False(t, perplexity.IsConfigured())
	assert.Equal(t, "sonar", perplexity.DefaultModel())

	xai := openai.NewXAI(config.OpenAIConfig{APIKey: "key", BaseURL: "https://api.x.ai/v1", Model: "grok-beta"})
	assert.Equal(t, "xai", xai.Name())
	assert.Equal(t, "grok-beta", xai.DefaultModel())
	assert.True(t, xai.IsConfigured())
}

func TestProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := openai.NewDeepSeek(config.OpenAIConfig{APIKey: "key", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "hi"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deepseek returned status 429")
}
