// Package env overlays environment variables onto stored settings.
//
// Variables are read from the process environment after loading an optional
// .env file. Overlaid values are applied on every settings read and are never
// written back to the config file.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/logger"
)

// Recognised environment variables.
const (
	OpenAIAPIKey    = "OPENAI_API_KEY"
	PerplexityKey   = "PPLX_API_KEY"
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
	GeminiAPIKey    = "GEMINI_API_KEY"
	LLMModel        = "QUILL_LLM_MODEL"
	EmbeddingModel  = "QUILL_EMBEDDING_MODEL"
	OllamaHost      = "OLLAMA_HOST"
	ChunkSize       = "QUILL_CHUNK_SIZE"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given). Variables already set in the environment win. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		logger.Debug("loaded environment from %s", file)
	}
	return nil
}

// Lookup reads a variable. It matches os.LookupEnv.
type Lookup func(key string) (string, bool)

// Overlay returns a settings overlay reading from the process environment.
func Overlay() func(*domain.AppSettings) {
	return OverlayFrom(os.LookupEnv)
}

// OverlayFrom returns a settings overlay reading variables through lookup.
//
// API keys fill in the matching provider. When no provider is configured,
// OPENAI_API_KEY selects OpenAI for both embeddings and generation, matching
// a bare .env with only the two API keys set.
func OverlayFrom(lookup Lookup) func(*domain.AppSettings) {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return v
	}

	return func(s *domain.AppSettings) {
		keys := map[domain.AIProvider]string{
			domain.AIProviderOpenAI:    get(OpenAIAPIKey),
			domain.AIProviderAnthropic: get(AnthropicAPIKey),
			domain.AIProviderGemini:    get(GeminiAPIKey),
		}

		if s.Embedding.Provider == "" && keys[domain.AIProviderOpenAI] != "" {
			s.Embedding.Provider = domain.AIProviderOpenAI
			s.Embedding.Model = domain.DefaultEmbeddingModels()[domain.AIProviderOpenAI]
		}
		if s.LLM.Provider == "" && keys[domain.AIProviderOpenAI] != "" {
			s.LLM.Provider = domain.AIProviderOpenAI
			s.LLM.Model = domain.DefaultLLMModels()[domain.AIProviderOpenAI]
		}

		if key := keys[s.Embedding.Provider]; key != "" {
			s.Embedding.APIKey = key
		}
		if key := keys[s.LLM.Provider]; key != "" {
			s.LLM.APIKey = key
		}
		if key := get(PerplexityKey); key != "" && s.Research.Provider == domain.ResearchProviderPerplexity {
			s.Research.APIKey = key
		}

		if model := get(LLMModel); model != "" {
			s.LLM.Model = model
		}
		if model := get(EmbeddingModel); model != "" {
			s.Embedding.Model = model
		}
		if host := get(OllamaHost); host != "" {
			if s.Embedding.Provider == domain.AIProviderOllama {
				s.Embedding.BaseURL = host
			}
			if s.LLM.Provider == domain.AIProviderOllama {
				s.LLM.BaseURL = host
			}
		}
		if v := get(ChunkSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				s.Retrieval.ChunkSize = n
			} else {
				logger.Warn("ignoring invalid %s=%q", ChunkSize, v)
			}
		}
	}
}
