package driven

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// PageFetcher downloads a URL and extracts its title and plain text.
type PageFetcher interface {
	// Fetch retrieves and extracts the page at url.
	// Errors wrap domain.ErrFetchFailed.
	Fetch(ctx context.Context, url string) (*domain.Page, error)
}
