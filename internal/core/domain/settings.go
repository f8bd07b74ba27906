package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API (embeddings only).
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// ResearchProvider identifies a research source discovery service.
type ResearchProvider string

// Available research providers.
const (
	// ResearchProviderPerplexity is the Perplexity online search API.
	ResearchProviderPerplexity ResearchProvider = "perplexity"
)

// IsValid returns true if the research provider is recognised.
func (p ResearchProvider) IsValid() bool {
	return p == ResearchProviderPerplexity
}

// String returns the string representation.
func (p ResearchProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p ResearchProvider) Description() string {
	if p == ResearchProviderPerplexity {
		return "Perplexity (cloud)"
	}
	return unknownDescription
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderGemini {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ResearchSettings holds source discovery configuration.
type ResearchSettings struct {
	// Provider is the discovery service provider.
	Provider ResearchProvider

	// Model is the online model used to find sources.
	Model string

	// BaseURL overrides the provider API endpoint.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string
}

// IsConfigured returns true if source discovery is set up.
func (r ResearchSettings) IsConfigured() bool {
	return r.Provider.IsValid() && r.APIKey != ""
}

// RetrievalSettings holds chunking and retrieval parameters.
type RetrievalSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// TopK is the number of chunks retrieved per section.
	TopK int

	// Threshold is the minimum (exclusive) similarity for a chunk to be used.
	Threshold float64
}

// FetchSettings holds page fetching behaviour.
type FetchSettings struct {
	// MaxRetries is the number of attempts per URL.
	MaxRetries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// RequestsPerSecond throttles outbound page requests.
	RequestsPerSecond float64

	// Timeout bounds a single request.
	Timeout time.Duration
}

// ArticleSettings holds article layout configuration.
type ArticleSettings struct {
	// Sections is the ordered list of section names to generate.
	Sections []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Research  ResearchSettings
	Retrieval RetrievalSettings
	Fetch     FetchSettings
	Article   ArticleSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features are left unconfigured by default.
// Users must explicitly configure them via the settings commands or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Research: ResearchSettings{
			Provider: ResearchProviderPerplexity,
			Model:    DefaultResearchModel,
		},
		Retrieval: RetrievalSettings{
			ChunkSize: DefaultChunkSize,
			TopK:      DefaultTopK,
			Threshold: DefaultThreshold,
		},
		Fetch: FetchSettings{
			MaxRetries:        3,
			RetryDelay:        time.Second,
			RequestsPerSecond: 1,
			Timeout:           10 * time.Second,
		},
		Article: ArticleSettings{
			Sections: DefaultSections(),
		},
	}
}

// DefaultChunkSize is the default chunk length in characters.
const DefaultChunkSize = 500

// DefaultResearchModel is the default online model for source discovery.
const DefaultResearchModel = "sonar-pro"

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
