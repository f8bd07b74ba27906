package driving

import "github.com/custodia-labs/quill/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetResearchProvider configures source discovery.
	SetResearchProvider(provider domain.ResearchProvider, model, apiKey string) error

	// SetRetrieval updates chunk size, top-k and threshold.
	SetRetrieval(retrieval domain.RetrievalSettings) error

	// SetSections replaces the ordered list of article sections.
	SetSections(sections []string) error

	// Validate checks that generation can run with the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
