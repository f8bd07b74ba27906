// Package plaintext handles text responses that need no markup removal.
package plaintext

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// "text/*" makes it the fallback for any other text type.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"text/csv",
		"text/*",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise collapses whitespace in the body and titles the page from the
// last element of the URL path.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawPage) (*domain.Page, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &domain.Page{
		URL:     raw.URL,
		Title:   extractTitle(raw.URL),
		Content: strings.Join(strings.Fields(string(raw.Content)), " "),
	}, nil
}

// extractTitle extracts a human-readable title from a URL.
func extractTitle(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	filename := path.Base(p)
	if filename == "." || filename == "/" {
		return ""
	}

	filename = strings.TrimSuffix(filename, path.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
