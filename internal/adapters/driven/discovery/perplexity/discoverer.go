// Package perplexity discovers research sources with the Perplexity online
// search API. Perplexity speaks the OpenAI chat completions protocol.
package perplexity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure Discoverer implements the interfaces.
var (
	_ driven.SourceDiscoverer = (*Discoverer)(nil)
	_ driven.PromptStoreAware = (*Discoverer)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.perplexity.ai"
	DefaultModel      = domain.DefaultResearchModel
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// urlMarker precedes each source URL in the model's reply.
const urlMarker = "**URL:**"

// DefaultSystemPrompt frames the model as a research assistant.
const DefaultSystemPrompt = "You are a research assistant focused on finding reliable academic sources."

// DefaultResearchPrompt asks for sources on a topic (%s).
const DefaultResearchPrompt = `Find the most relevant and reliable online resources about %s.

Focus on:
1. Academic papers (especially ones with PDF links)
2. Research articles
3. Technical documentation
4. Educational resources

For each source, provide:
RESOURCE:
**URL:** [direct link]
Type: [paper/article/documentation/etc]
Relevance: [brief explanation]

Requirements:
- Return at least 5 high-quality sources
- Prioritize peer-reviewed content
- Include recent publications
- Ensure URLs are accessible`

// Config holds configuration for the Perplexity discoverer.
type Config struct {
	// APIKey is the Perplexity API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.perplexity.ai).
	BaseURL string

	// Model is the online model to query (default: sonar-pro).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries is the number of attempts for a failed request (default: 3).
	MaxRetries int

	// RetryDelay is the pause between attempts (default: 1s).
	RetryDelay time.Duration
}

// Discoverer finds source URLs for a topic.
type Discoverer struct {
	client      openai.Client
	model       string
	maxRetries  int
	retryDelay  time.Duration
	promptStore driven.PromptStore
}

// New creates a new Perplexity discoverer.
func New(cfg Config) (*Discoverer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perplexity: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)

	return &Discoverer{
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Name returns the provider name.
func (d *Discoverer) Name() string {
	return domain.ResearchProviderPerplexity.String()
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (d *Discoverer) SetPromptStore(store driven.PromptStore) {
	d.promptStore = store
}

// DiscoverSources asks the model for sources and extracts their URLs.
// Requests are retried up to the configured attempt count.
func (d *Discoverer) DiscoverSources(ctx context.Context, topic string) ([]string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(d.loadPrompt(driven.PromptResearchSystem, DefaultSystemPrompt)),
			openai.UserMessage(fmt.Sprintf(d.loadPrompt(driven.PromptResearch, DefaultResearchPrompt), topic)),
		},
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		resp, err := d.client.Chat.Completions.New(ctx, params)
		if err == nil {
			if len(resp.Choices) == 0 {
				return []string{}, nil
			}
			urls := ExtractURLs(resp.Choices[0].Message.Content)
			logger.Info("perplexity returned %d URLs for %q", len(urls), topic)
			return urls, nil
		}

		lastErr = err
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			break
		}
		logger.Warn("perplexity request attempt %d failed: %v", attempt, err)

		if attempt < d.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("perplexity: %w: %w", domain.ErrDiscoveryFailed, lastErr)
}

// ExtractURLs returns the URLs following "**URL:**" markers, in order.
// Surrounding asterisks and spaces are stripped; values that do not start
// with "http" are ignored.
func ExtractURLs(content string) []string {
	urls := []string{}
	for _, line := range strings.Split(content, "\n") {
		_, after, found := strings.Cut(line, urlMarker)
		if !found {
			continue
		}
		url := strings.TrimSpace(strings.Trim(strings.TrimSpace(after), "* "))
		if strings.HasPrefix(url, "http") {
			urls = append(urls, url)
		}
	}
	return urls
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (d *Discoverer) loadPrompt(name, fallback string) string {
	if d.promptStore == nil {
		return fallback
	}
	prompt, err := d.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
