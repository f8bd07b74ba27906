package driven

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// Normaliser extracts a title and plain text from a fetched page body.
// Each normaliser handles specific MIME types (e.g., HTML, PDF).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise converts a raw page into plain text.
	Normalise(ctx context.Context, raw *domain.RawPage) (*domain.Page, error)
}
