package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyResearchProvider  = "research.provider"
	keyResearchModel     = "research.model"
	keyResearchBaseURL   = "research.base_url"
	keyResearchAPIKey    = "research.api_key"
	keyChunkSize         = "retrieval.chunk_size"
	keyTopK              = "retrieval.top_k"
	keyThreshold         = "retrieval.threshold"
	keyFetchMaxRetries   = "fetch.max_retries"
	keyFetchRetryDelay   = "fetch.retry_delay"
	keyFetchRate         = "fetch.rate"
	keyFetchTimeout      = "fetch.timeout"
	keyArticleSections   = "article.sections"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// SettingsOverlay adjusts loaded settings without persisting the change.
// It is used for environment overrides such as API keys.
type SettingsOverlay func(*domain.AppSettings)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	overlay     SettingsOverlay
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// SetOverlay installs a transient overlay applied by Get.
func (s *SettingsService) SetOverlay(overlay SettingsOverlay) {
	s.overlay = overlay
}

// Get retrieves current application settings, with any overlay applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.load()
	if s.overlay != nil {
		s.overlay(settings)
	}
	return settings, nil
}

// load reads the persisted settings only.
func (s *SettingsService) load() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Research: domain.ResearchSettings{
			Provider: s.getResearchProvider(defaults.Research.Provider),
			Model:    s.getString(keyResearchModel, defaults.Research.Model),
			BaseURL:  s.configStore.GetString(keyResearchBaseURL),
			APIKey:   s.configStore.GetString(keyResearchAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Retrieval.ChunkSize),
			TopK:      s.getInt(keyTopK, defaults.Retrieval.TopK),
			Threshold: s.getFloat(keyThreshold, defaults.Retrieval.Threshold),
		},
		Fetch: domain.FetchSettings{
			MaxRetries:        s.getInt(keyFetchMaxRetries, defaults.Fetch.MaxRetries),
			RetryDelay:        s.getDuration(keyFetchRetryDelay, defaults.Fetch.RetryDelay),
			RequestsPerSecond: s.getFloat(keyFetchRate, defaults.Fetch.RequestsPerSecond),
			Timeout:           s.getDuration(keyFetchTimeout, defaults.Fetch.Timeout),
		},
		Article: domain.ArticleSettings{
			Sections: s.getStringSlice(keyArticleSections, defaults.Article.Sections),
		},
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyResearchProvider, settings.Research.Provider.String(), false},
		{keyResearchModel, settings.Research.Model, false},
		{keyResearchBaseURL, settings.Research.BaseURL, false},
		{keyResearchAPIKey, settings.Research.APIKey, settings.Research.APIKey == ""},
		{keyChunkSize, settings.Retrieval.ChunkSize, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyThreshold, settings.Retrieval.Threshold, false},
		{keyFetchMaxRetries, settings.Fetch.MaxRetries, false},
		{keyFetchRetryDelay, settings.Fetch.RetryDelay.String(), false},
		{keyFetchRate, settings.Fetch.RequestsPerSecond, false},
		{keyFetchTimeout, settings.Fetch.Timeout.String(), false},
		{keyArticleSections, settings.Article.Sections, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.load()
	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.load()
	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetResearchProvider configures source discovery.
func (s *SettingsService) SetResearchProvider(provider domain.ResearchProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid research provider: %s", provider)
	}
	if apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.load()
	settings.Research.Provider = provider
	settings.Research.Model = model
	if model == "" {
		settings.Research.Model = domain.DefaultResearchModel
	}
	settings.Research.APIKey = apiKey

	return s.Save(settings)
}

// SetRetrieval updates chunk size, top-k and threshold.
func (s *SettingsService) SetRetrieval(retrieval domain.RetrievalSettings) error {
	if retrieval.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	}
	if retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", domain.ErrInvalidInput)
	}
	if retrieval.Threshold < -1 || retrieval.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be in [-1, 1)", domain.ErrInvalidInput)
	}

	settings := s.load()
	settings.Retrieval = retrieval
	return s.Save(settings)
}

// SetSections replaces the ordered list of article sections.
// Blank names are dropped.
func (s *SettingsService) SetSections(sections []string) error {
	cleaned := make([]string, 0, len(sections))
	for _, name := range sections {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("%w: at least one section is required", domain.ErrInvalidInput)
	}

	settings := s.load()
	settings.Article.Sections = cleaned
	return s.Save(settings)
}

// Validate checks that article generation can run with the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: configure an embedding provider with 'quill settings embedding'",
			domain.ErrEmbeddingUnavailable)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: configure an LLM provider with 'quill settings llm'",
			domain.ErrLLMUnavailable)
	}
	if len(settings.Article.Sections) == 0 {
		return fmt.Errorf("%w: no article sections configured", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getFloat keeps a stored zero; only missing or non-numeric keys use the default.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.configStore.GetFloat(key); ok {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getResearchProvider(defaultVal domain.ResearchProvider) domain.ResearchProvider {
	val := s.configStore.GetString(keyResearchProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.ResearchProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
