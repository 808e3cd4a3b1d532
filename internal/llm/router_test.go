package llm_test

import (
	"context"
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name       string
	configured bool
}

func (s stubProvider) Name() string              { return s.name }
func (s stubProvider) AvailableModels() []string { return []string{"m1"} }
func (s stubProvider) DefaultModel() string      { return "m1" }
func (s stubProvider) IsConfigured() bool        { return s.configured }
func (s stubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	return &llm.Response{Content: req.Prompt, Model: model}, nil
}

func TestRouter(t *testing.T) {
	router := llm.NewRouter("openai")
	router.RegisterProvider(stubProvider{name: "xai", configured: true})
	router.RegisterProvider(stubProvider{name: "openai", configured: true})
	router.RegisterProvider(stubProvider{name: "anthropic", configured: false})

	t.Run("lists configured providers sorted", func(t *testing.T) {
		assert.Equal(t, []string{"openai", "xai"}, router.ListProviders())
	})

	t.Run("empty name selects default", func(t *testing.T) {
		p, err := router.GetProvider("")
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())
	})

	t.Run("unconfigured provider is rejected", func(t *testing.T) {
		_, err := router.GetProvider("anthropic")
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := router.GetProvider("gemini")
		assert.Error(t, err)
	})

	t.Run("info covers all providers", func(t *testing.T) {
		infos := router.GetProvidersInfo()
		require.Len(t, infos, 3)
		assert.Equal(t, "anthropic", infos[0].Name)
		assert.False(t, infos[0].Configured)
		assert.True(t, infos[1].Default)
	})
}

func TestRouter_NothingConfigured(t *testing.T) {
	router := llm.NewRouter("openai")
	assert.Empty(t, router.ListProviders())
}

func TestRouter_Resolve(t *testing.T) {
	router := llm.NewRouter("openai")
	router.RegisterProvider(stubProvider{name: "openai", configured: true})
	router.RegisterProvider(stubProvider{name: "perplexity", configured: true})
	router.RegisterProvider(stubProvider{name: "anthropic", configured: false})

	tests := []struct {
		preferred string
		want      string
	}{
		{"perplexity", "perplexity"},
		{"anthropic", "openai"},
		{"gemini", "openai"},
		{"", "openai"},
	}

	for _, tt := range tests {
		t.Run("prefer "+tt.preferred, func(t *testing.T) {
			p, err := router.Resolve(tt.preferred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}

	t.Run("default unusable", func(t *testing.T) {
		empty := llm.NewRouter("openai")
		_, err := empty.Resolve("perplexity")
		assert.ErrorContains(t, err, "no AI provider available")
	})
}
