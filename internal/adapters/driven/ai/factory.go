// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/quill/internal/adapters/driven/discovery/perplexity"
	geminiembed "github.com/custodia-labs/quill/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/quill/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/quill/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/quill/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/quill/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/quill/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Discoverer       driven.SourceDiscoverer // Nil when research is not configured.
	Warnings         []string                // Non-fatal issues found during setup.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates and validates every AI service needed to write articles.
// Embedding and LLM providers are required; a missing research provider only
// adds a warning, since articles can still be written from local files.
// Prompts, when non-nil, is handed to services that accept custom prompts.
func Initialise(settings *domain.AppSettings, prompts driven.PromptStore) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured. Run 'quill settings embedding' to fix",
			domain.ErrEmbeddingUnavailable)
	}
	result.EmbeddingService = embedder

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Close()
		return nil, err
	}
	if llm == nil {
		result.Close()
		return nil, fmt.Errorf("%w: no LLM provider configured. Run 'quill settings llm' to fix",
			domain.ErrLLMUnavailable)
	}
	result.LLMService = llm

	discoverer, err := CreateDiscoverer(&settings.Research)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("source discovery disabled: %v", err))
	case discoverer == nil:
		result.Warnings = append(result.Warnings,
			"source discovery disabled: set PPLX_API_KEY or run 'quill settings research'")
	default:
		if prompts != nil {
			discoverer.SetPromptStore(prompts)
		}
		result.Discoverer = discoverer
	}

	return result, nil
}

// pinger is the lifecycle shared by every AI adapter.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping checks svc within pingTimeout.
func ping(svc pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateAndValidateEmbeddingService creates an embedding service and checks
// it is reachable. Errors wrap domain.ErrEmbeddingUnavailable and name the
// settings command that fixes them.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quill settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quill settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and checks it is
// reachable. Errors wrap domain.ErrLLMUnavailable.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quill settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quill settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a throwaway embedding service and pings it.
// The settings commands call it before saving.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateLLMConfig creates a throwaway LLM service and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderGemini:
		return createGeminiEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateDiscoverer creates the source discoverer for the research settings.
// Returns nil if research is not configured.
func CreateDiscoverer(settings *domain.ResearchSettings) (*perplexity.Discoverer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.ResearchProviderPerplexity:
		return perplexity.New(perplexity.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported research provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
		MaxRetries: 2,
	})
}

// createGeminiEmbedding creates a Gemini embedding service.
func createGeminiEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
		APIKey:     settings.APIKey,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxRetries: 2,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
