package gemini_test

import (
	"context"
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/llm/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Models(t *testing.T) {
	p := gemini.NewProvider(config.GeminiConfig{APIKey: "key"})

	assert.Equal(t, "gemini-2.5-flash", p.DefaultModel())
	assert.Contains(t, p.AvailableModels(), p.DefaultModel())
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-1.5-flash", "gemini-1.5-pro", "gemini-1.0-pro"}, p.AvailableModels())

	pinned := gemini.NewProvider(config.GeminiConfig{APIKey: "key", Model: "gemini-1.5-pro"})
	assert.Equal(t, "gemini-1.5-pro", pinned.DefaultModel())
}

func TestProvider_NotConfigured(t *testing.T) {
	p := gemini.NewProvider(config.GeminiConfig{})
	assert.False(t, p.IsConfigured())

	_, err := p.Complete(context.Background(), llm.Request{Prompt: "hi"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
