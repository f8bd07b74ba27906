package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure ArticleStore implements the interface.
var _ driven.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is an in-memory driven.ArticleStore.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
}

// NewArticleStore creates a new in-memory article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		articles: make(map[string]domain.Article),
	}
}

// Save stores a copy of the article.
func (s *ArticleStore) Save(_ context.Context, article *domain.Article) error {
	if article == nil || article.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.ID] = clone(*article)
	return nil
}

// Get retrieves a copy of an article by ID.
func (s *ArticleStore) Get(_ context.Context, id string) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clone(article)
	return &c, nil
}

// List returns summaries of all stored articles, newest first.
func (s *ArticleStore) List(_ context.Context) ([]domain.ArticleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.ArticleSummary, 0, len(s.articles))
	for _, article := range s.articles {
		summaries = append(summaries, article.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Delete removes an article.
func (s *ArticleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, id)
	return nil
}

func clone(a domain.Article) domain.Article {
	a.Sections = append([]domain.Section(nil), a.Sections...)
	a.Sources = append([]string(nil), a.Sources...)
	return a
}
