package driven

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// ArticleStore keeps generated articles.
// Backed by SQLite; only finished articles are stored, never the
// in-memory chunks or citations used to write them.
type ArticleStore interface {
	// Save stores or replaces an article.
	Save(ctx context.Context, article *domain.Article) error

	// Get retrieves an article by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Article, error)

	// List returns summaries of all stored articles, newest first.
	List(ctx context.Context) ([]domain.ArticleSummary, error)

	// Delete removes an article. Deleting a missing article is not an error.
	Delete(ctx context.Context, id string) error
}
