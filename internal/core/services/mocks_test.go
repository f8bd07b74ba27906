package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in vectors embed to that vector; texts in failures return an
// error; anything else embeds to fallback (or fails when fallback is nil).
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	failures map[string]bool
	fallback []float32
	calls    []string
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors:  make(map[string][]float32),
		failures: make(map[string]bool),
		fallback: []float32{1, 0, 0},
	}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)

	if m.failures[text] {
		return nil, errors.New("mock embed failure")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fallback == nil {
		return nil, errors.New("no vector for text")
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.fallback)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	calls    [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls = append(m.calls, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}})
	return m.response, m.err
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockRetriever implements driving.RetrievalService for testing.
type mockRetriever struct {
	results []domain.RetrievalResult
	queries []string
	opts    []domain.RetrievalOptions
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, opts domain.RetrievalOptions) []domain.RetrievalResult {
	m.queries = append(m.queries, query)
	m.opts = append(m.opts, opts)
	return m.results
}

// mockDiscoverer implements driven.SourceDiscoverer for testing.
type mockDiscoverer struct {
	urls []string
	err  error
}

func (m *mockDiscoverer) DiscoverSources(_ context.Context, _ string) ([]string, error) {
	return m.urls, m.err
}

func (m *mockDiscoverer) Name() string {
	return "mock"
}

// mockFetcher implements driven.PageFetcher for testing.
type mockFetcher struct {
	pages map[string]*domain.Page
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*domain.Page, error) {
	if p, ok := m.pages[url]; ok {
		return p, nil
	}
	return nil, domain.ErrFetchFailed
}

// mockArticleStore implements driven.ArticleStore for testing.
type mockArticleStore struct {
	articles map[string]*domain.Article
	saveErr  error
}

func newMockArticleStore() *mockArticleStore {
	return &mockArticleStore{articles: make(map[string]*domain.Article)}
}

func (m *mockArticleStore) Save(_ context.Context, a *domain.Article) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.articles[a.ID] = a
	return nil
}

func (m *mockArticleStore) Get(_ context.Context, id string) (*domain.Article, error) {
	if a, ok := m.articles[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockArticleStore) List(_ context.Context) ([]domain.ArticleSummary, error) {
	out := make([]domain.ArticleSummary, 0, len(m.articles))
	for _, a := range m.articles {
		out = append(out, a.Summary())
	}
	return out, nil
}

func (m *mockArticleStore) Delete(_ context.Context, id string) error {
	delete(m.articles, id)
	return nil
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}
