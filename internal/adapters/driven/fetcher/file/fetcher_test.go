package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/normalisers"
	htmlnorm "github.com/custodia-labs/quill/internal/normalisers/html"
	"github.com/custodia-labs/quill/internal/normalisers/plaintext"
)

func newTestFetcher() *Fetcher {
	return New(normalisers.NewRegistry(htmlnorm.New(), plaintext.New()))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFetcher_Fetch_PlainText(t *testing.T) {
	path := writeFile(t, "bees.txt", "Bees   communicate by dancing.")

	page, err := newTestFetcher().Fetch(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Bees communicate by dancing.", page.Content)
	assert.Equal(t, "bees", page.Title)
	assert.True(t, strings.HasPrefix(page.URL, "file://"))
	assert.True(t, strings.HasSuffix(page.URL, "/bees.txt"))
}

func TestFetcher_Fetch_Markdown(t *testing.T) {
	path := writeFile(t, "notes.md", "# Hive notes\n\nWorkers forage.")

	page, err := newTestFetcher().Fetch(context.Background(), path)

	require.NoError(t, err)
	assert.Contains(t, page.Content, "Workers forage.")
}

func TestFetcher_Fetch_HTML(t *testing.T) {
	path := writeFile(t, "reef.html",
		`<html><head><title>Reef Study</title></head><body><p>Corals are animals.</p></body></html>`)

	page, err := newTestFetcher().Fetch(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Reef Study", page.Title)
	assert.Equal(t, "Corals are animals.", page.Content)
}

func TestFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.txt") }},
		{"directory", func(t *testing.T) string { return t.TempDir() }},
		{"empty document", func(t *testing.T) string { return writeFile(t, "empty.txt", "   ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestFetcher().Fetch(context.Background(), tt.path(t))
			assert.ErrorIs(t, err, domain.ErrFetchFailed)
		})
	}
}

func TestFetcher_Fetch_UnsupportedType(t *testing.T) {
	path := writeFile(t, "blob.bin", "\x00\x01\x02\x03")
	fetcher := New(normalisers.NewRegistry(htmlnorm.New()))

	_, err := fetcher.Fetch(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestFetcher_Fetch_CancelledContext(t *testing.T) {
	path := writeFile(t, "bees.txt", "content")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Fetch(ctx, path)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_FetchAll(t *testing.T) {
	a := writeFile(t, "a.txt", "first")
	b := writeFile(t, "b.txt", "second")

	pages, err := newTestFetcher().FetchAll(context.Background(), []string{a, b})

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "first", pages[0].Content)
	assert.Equal(t, "second", pages[1].Content)

	_, err = newTestFetcher().FetchAll(context.Background(), []string{a, "/does/not/exist.txt"})
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}
