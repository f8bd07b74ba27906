// Package file reads source documents from the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// maxFileSize caps the bytes read from a single file.
const maxFileSize = 20 << 20

// Fetcher loads local files and dispatches them to a normaliser by extension.
type Fetcher struct {
	registry driven.NormaliserRegistry
}

// New creates a file fetcher using registry to extract text.
func New(registry driven.NormaliserRegistry) *Fetcher {
	return &Fetcher{registry: registry}
}

// Fetch reads the file at path. The returned page URL is the file:// URL
// of the absolute path so citations point back at the document.
func (f *Fetcher) Fetch(ctx context.Context, path string) (*domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, path, err)
	}

	body, err := readFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, path, err)
	}

	mimeType := mediaType(abs, body)
	normaliser, err := f.registry.Get(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, path, err)
	}

	location := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	page, err := normaliser.Normalise(ctx, &domain.RawPage{
		URL:      location,
		MIMEType: mimeType,
		Content:  body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, path, err)
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, fmt.Errorf("%w: %s: empty document", domain.ErrFetchFailed, path)
	}

	page.URL = location
	if page.Title == "" {
		page.Title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	logger.Debug("read %s (%d chars, %s)", path, len(page.Content), mimeType)
	return page, nil
}

// FetchAll reads every path, stopping at the first failure.
func (f *Fetcher) FetchAll(ctx context.Context, paths []string) ([]domain.Page, error) {
	pages := make([]domain.Page, 0, len(paths))
	for _, p := range paths {
		page, err := f.Fetch(ctx, p)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, nil
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("is a directory")
	}
	return io.ReadAll(io.LimitReader(fh, maxFileSize))
}

// mediaType guesses the MIME type from the extension, sniffing the
// content when the extension is unknown.
func mediaType(path string, body []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown", ".txt":
		return "text/plain"
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}
