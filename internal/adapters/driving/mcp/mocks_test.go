package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// mockArticleService is a mock implementation of driving.ArticleService.
type mockArticleService struct {
	article   *domain.Article
	summaries []domain.ArticleSummary
	err       error

	generateCalls int
	contentPages  []domain.Page
	sectionName   string
}

func (m *mockArticleService) Generate(_ context.Context, _ string, _ domain.ProgressFunc) (*domain.Article, error) {
	m.generateCalls++
	return m.article, m.err
}

func (m *mockArticleService) GenerateFromContent(
	_ context.Context, _ string, pages []domain.Page, _ domain.ProgressFunc,
) (*domain.Article, error) {
	m.contentPages = pages
	return m.article, m.err
}

func (m *mockArticleService) WriteSection(
	_ context.Context, _, section string, pages []domain.Page,
) (*domain.Article, error) {
	m.sectionName = section
	m.contentPages = pages
	return m.article, m.err
}

func (m *mockArticleService) Get(_ context.Context, id string) (*domain.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.article == nil || m.article.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.article, nil
}

func (m *mockArticleService) List(_ context.Context) ([]domain.ArticleSummary, error) {
	return m.summaries, m.err
}

func (m *mockArticleService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockPromptWatcher records that Watch was started and blocks until ctx is done.
type mockPromptWatcher struct {
	started chan struct{}
	once    sync.Once
}

func newMockPromptWatcher() *mockPromptWatcher {
	return &mockPromptWatcher{started: make(chan struct{})}
}

func (m *mockPromptWatcher) Watch(ctx context.Context, onChange func(name string)) error {
	m.once.Do(func() { close(m.started) })
	onChange("section")
	<-ctx.Done()
	return nil
}
