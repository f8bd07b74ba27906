package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "gemini is valid", provider: AIProviderGemini, expected: true},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: AIProvider("unknown"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, false},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderGemini, true},
		{AIProvider("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.RequiresAPIKey())
		})
	}
}

func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
	assert.False(t, AIProviderAnthropic.IsLocal())
	assert.False(t, AIProviderGemini.IsLocal())
}

func TestAIProvider_String(t *testing.T) {
	assert.Equal(t, "ollama", AIProviderOllama.String())
	assert.Equal(t, "openai", AIProviderOpenAI.String())
	assert.Equal(t, "anthropic", AIProviderAnthropic.String())
	assert.Equal(t, "gemini", AIProviderGemini.String())
}

func TestAIProvider_Description(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected string
	}{
		{AIProviderOllama, "Ollama (local)"},
		{AIProviderOpenAI, "OpenAI (cloud)"},
		{AIProviderAnthropic, "Anthropic (cloud)"},
		{AIProviderGemini, "Google Gemini (cloud)"},
		{AIProvider("unknown"), unknownDescription},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.Description())
		})
	}
}

func TestResearchProvider(t *testing.T) {
	assert.True(t, ResearchProviderPerplexity.IsValid())
	assert.False(t, ResearchProvider("").IsValid())
	assert.False(t, ResearchProvider("bing").IsValid())

	assert.Equal(t, "perplexity", ResearchProviderPerplexity.String())
	assert.Equal(t, "Perplexity (cloud)", ResearchProviderPerplexity.Description())
	assert.Equal(t, unknownDescription, ResearchProvider("bing").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "empty is not configured",
			settings: EmbeddingSettings{},
			expected: false,
		},
		{
			name:     "ollama without key is configured",
			settings: EmbeddingSettings{Provider: AIProviderOllama, Model: "nomic-embed-text"},
			expected: true,
		},
		{
			name:     "openai without key is not configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI},
			expected: false,
		},
		{
			name:     "openai with key is configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "gemini with key is configured",
			settings: EmbeddingSettings{Provider: AIProviderGemini, APIKey: "key"},
			expected: true,
		},
		{
			name:     "unknown provider is not configured",
			settings: EmbeddingSettings{Provider: "unknown", APIKey: "key"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{
			name:     "empty is not configured",
			settings: LLMSettings{},
			expected: false,
		},
		{
			name:     "ollama is configured",
			settings: LLMSettings{Provider: AIProviderOllama},
			expected: true,
		},
		{
			name:     "anthropic without key is not configured",
			settings: LLMSettings{Provider: AIProviderAnthropic},
			expected: false,
		},
		{
			name:     "anthropic with key is configured",
			settings: LLMSettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"},
			expected: true,
		},
		{
			name:     "gemini cannot generate text",
			settings: LLMSettings{Provider: AIProviderGemini, APIKey: "key"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestResearchSettings_IsConfigured(t *testing.T) {
	assert.False(t, ResearchSettings{}.IsConfigured())
	assert.False(t, ResearchSettings{Provider: ResearchProviderPerplexity}.IsConfigured())
	assert.False(t, ResearchSettings{Provider: "bing", APIKey: "key"}.IsConfigured())
	assert.True(t, ResearchSettings{Provider: ResearchProviderPerplexity, APIKey: "pplx"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())

	assert.Equal(t, ResearchProviderPerplexity, settings.Research.Provider)
	assert.Equal(t, DefaultResearchModel, settings.Research.Model)
	assert.False(t, settings.Research.IsConfigured(), "no API key by default")

	assert.Equal(t, DefaultChunkSize, settings.Retrieval.ChunkSize)
	assert.Equal(t, DefaultTopK, settings.Retrieval.TopK)
	assert.InDelta(t, DefaultThreshold, settings.Retrieval.Threshold, 1e-9)

	assert.Equal(t, 3, settings.Fetch.MaxRetries)
	assert.Equal(t, time.Second, settings.Fetch.RetryDelay)
	assert.InDelta(t, 1.0, settings.Fetch.RequestsPerSecond, 1e-9)
	assert.Equal(t, 10*time.Second, settings.Fetch.Timeout)

	assert.Equal(t, DefaultSections(), settings.Article.Sections)
}

func TestDefaultAppSettings_SectionsAreCopied(t *testing.T) {
	a := DefaultAppSettings()
	a.Article.Sections[0] = "Summary"

	b := DefaultAppSettings()
	assert.Equal(t, "Abstract", b.Article.Sections[0])
}

func TestAllEmbeddingProviders(t *testing.T) {
	providers := AllEmbeddingProviders()

	assert.ElementsMatch(t, []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderGemini}, providers)
	assert.NotContains(t, providers, AIProviderAnthropic)
}

func TestAllLLMProviders(t *testing.T) {
	providers := AllLLMProviders()

	assert.ElementsMatch(t, []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}, providers)
	assert.NotContains(t, providers, AIProviderGemini)
}

func TestDefaultModels_CoverProviders(t *testing.T) {
	embedding := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, embedding[p], "embedding model for %s", p)
	}

	llm := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, llm[p], "llm model for %s", p)
	}
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()

	// Every default embedding model has a known size.
	for provider, model := range DefaultEmbeddingModels() {
		d, ok := dims[model]
		require.True(t, ok, "missing dimensions for %s model %s", provider, model)
		assert.Positive(t, d)
	}

	assert.Equal(t, 768, dims["nomic-embed-text"])
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 3072, dims["text-embedding-3-large"])
}
