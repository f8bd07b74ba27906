package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/quill/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/core/services"
)

// mockArticleService is an in-memory ArticleService for command tests.
type mockArticleService struct {
	articles map[string]*domain.Article

	err     error
	saveErr error

	topics   []string
	pages    []domain.Page
	sections []string
}

var _ driving.ArticleService = (*mockArticleService)(nil)

func newMockArticleService() *mockArticleService {
	return &mockArticleService{articles: map[string]*domain.Article{
		"art-1": testArticle("art-1", "Coral reefs"),
	}}
}

func testArticle(id, topic string) *domain.Article {
	return &domain.Article{
		ID:    id,
		Topic: topic,
		Sections: []domain.Section{
			{Name: "Introduction", Content: "Reefs are built by corals [1]."},
			{Name: "Conclusion", Content: "Reefs are at risk [1]."},
		},
		References: "References:\n1. Reef Study. https://example.com/reef",
		Sources:    []string{"https://example.com/reef"},
		CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockArticleService) Generate(
	_ context.Context, topic string, progress domain.ProgressFunc,
) (*domain.Article, error) {
	m.topics = append(m.topics, topic)
	if m.err != nil {
		return nil, m.err
	}
	if progress != nil {
		progress(domain.Progress{Stage: domain.StageResearch, Fraction: 0.33, Message: "Found 1 sources"})
		progress(domain.Progress{Stage: domain.StageWriting, Fraction: 0.8, Message: "Writing Conclusion"})
	}
	return testArticle("gen-1", topic), m.saveErr
}

func (m *mockArticleService) GenerateFromContent(
	ctx context.Context, topic string, pages []domain.Page, progress domain.ProgressFunc,
) (*domain.Article, error) {
	m.pages = pages
	return m.Generate(ctx, topic, progress)
}

func (m *mockArticleService) WriteSection(
	_ context.Context, topic, section string, pages []domain.Page,
) (*domain.Article, error) {
	m.topics = append(m.topics, topic)
	m.sections = append(m.sections, section)
	m.pages = pages
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Article{
		ID:         "sec-1",
		Topic:      topic,
		Sections:   []domain.Section{{Name: section, Content: "Section text [1]."}},
		References: "References:\n1. notes",
		Sources:    []string{"notes"},
	}, nil
}

func (m *mockArticleService) Get(_ context.Context, id string) (*domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockArticleService) List(_ context.Context) ([]domain.ArticleSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	summaries := make([]domain.ArticleSummary, 0, len(m.articles))
	for _, a := range m.articles {
		summaries = append(summaries, a.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].CreatedAt.After(summaries[j].CreatedAt) })
	return summaries, nil
}

func (m *mockArticleService) Delete(_ context.Context, id string) error {
	if _, ok := m.articles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

// mockPageLoader returns one page per path.
type mockPageLoader struct {
	paths []string
	err   error
}

func (m *mockPageLoader) FetchAll(_ context.Context, paths []string) ([]domain.Page, error) {
	m.paths = paths
	if m.err != nil {
		return nil, m.err
	}
	pages := make([]domain.Page, len(paths))
	for i, p := range paths {
		pages[i] = domain.Page{URL: "file://" + p, Title: p, Content: "content of " + p}
	}
	return pages, nil
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	err error
}

func (m *mockAIValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return m.err }
func (m *mockAIValidator) ValidateLLM(*domain.LLMSettings) error             { return m.err }

// Test fixtures installed by setupTestServices.
var (
	testWriter    *mockArticleService
	testHistory   *mockArticleService
	testFiles     *mockPageLoader
	testValidator *mockAIValidator
	testReleases  int
	testWriterErr error
)

// setupTestServices installs mock services and returns a cleanup func
// that restores the package state and flag values.
func setupTestServices() func() {
	testWriter = newMockArticleService()
	testHistory = newMockArticleService()
	testFiles = &mockPageLoader{}
	testValidator = &mockAIValidator{}
	testReleases = 0
	testWriterErr = nil

	SetServices(&Services{
		Settings: services.NewSettingsService(memory.NewConfigStore(), testValidator),
		History:  testHistory,
		NewWriter: func() (driving.ArticleService, func(), error) {
			if testWriterErr != nil {
				return nil, nil, testWriterErr
			}
			return testWriter, func() { testReleases++ }, nil
		},
		Files: testFiles,
	})

	return func() {
		SetServices(nil)
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag to its default so state does not leak
// between tests that share the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var errTest = errors.New("boom")
