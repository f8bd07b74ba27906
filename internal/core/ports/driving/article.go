package driving

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// ArticleService runs the full research-and-write pipeline and manages
// previously generated articles.
type ArticleService interface {
	// Generate discovers sources for topic, ingests them and writes every
	// configured section. progress may be nil.
	Generate(ctx context.Context, topic string, progress domain.ProgressFunc) (*domain.Article, error)

	// GenerateFromContent writes the article from caller-supplied pages
	// instead of discovered ones.
	GenerateFromContent(
		ctx context.Context, topic string, pages []domain.Page, progress domain.ProgressFunc,
	) (*domain.Article, error)

	// WriteSection writes one section about topic from caller-supplied pages.
	// The one-section result carries its references and is not stored.
	WriteSection(ctx context.Context, topic, section string, pages []domain.Page) (*domain.Article, error)

	// Get retrieves a stored article.
	Get(ctx context.Context, id string) (*domain.Article, error)

	// List returns stored article summaries, newest first.
	List(ctx context.Context) ([]domain.ArticleSummary, error)

	// Delete removes a stored article.
	Delete(ctx context.Context, id string) error
}
