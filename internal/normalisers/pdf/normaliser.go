// Package pdf extracts plain text from PDF documents linked as sources.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds a title taken from the first line of text.
const maxTitleLength = 200

// TextExtractor returns the plain text of a PDF document.
type TextExtractor func(content []byte) (string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract TextExtractor
}

// New creates a PDF normaliser backed by the pure-Go PDF reader.
func New() *Normaliser {
	return NewWithExtractor(extractText)
}

// NewWithExtractor creates a PDF normaliser with a custom text extractor.
func NewWithExtractor(extract TextExtractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of a PDF. The title is the first non-empty
// line of text, or the file name from the URL.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawPage) (*domain.Page, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	return &domain.Page{
		URL:     raw.URL,
		Title:   extractTitle(text, raw.URL),
		Content: strings.Join(strings.Fields(text), " "),
	}, nil
}

// extractText reads every page of the document as plain text.
func extractText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return buf.String(), nil
}

// extractTitle returns the first non-empty line, falling back to the file name.
func extractTitle(text, rawURL string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxTitleLength {
			line = line[:maxTitleLength]
		}
		return line
	}

	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	if name == "." || name == "/" {
		return ""
	}
	return name
}
