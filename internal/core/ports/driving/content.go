package driving

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// ContentService ingests source text into the retrieval store.
type ContentService interface {
	// AddContent chunks, embeds and stores text from source.
	// When fields is non-nil a single citation is created and shared by every
	// stored chunk. Per-chunk failures are reported, never returned.
	AddContent(ctx context.Context, text, source string, fields *domain.CitationFields) domain.IngestReport

	// Len returns the number of stored chunks.
	Len() int

	// Sources returns distinct source identifiers in first-seen order.
	Sources() []string
}

// RetrievalService ranks stored chunks against a query.
type RetrievalService interface {
	// Retrieve returns the chunks most similar to query.
	// An empty store or an unembeddable query yields an empty result.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) []domain.RetrievalResult
}
