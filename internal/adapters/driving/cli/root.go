// Package cli provides the quill command-line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/quill/internal/adapters/driving/mcp"
	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/logger"
)

// WriterFactory creates an article service backed by live AI providers.
// The returned release func frees provider resources and must be called.
type WriterFactory func() (driving.ArticleService, func(), error)

// PageLoader reads local source documents.
type PageLoader interface {
	// FetchAll reads every path in order.
	FetchAll(ctx context.Context, paths []string) ([]domain.Page, error)
}

// Services holds the dependencies the commands run against.
type Services struct {
	// Settings manages stored configuration. Required by settings commands.
	Settings driving.SettingsService

	// History reads and deletes stored articles without AI providers.
	History driving.ArticleService

	// NewWriter connects to the configured providers on demand, so commands
	// that never generate work without them.
	NewWriter WriterFactory

	// Files loads --file sources.
	Files PageLoader

	// Prompts reloads prompt templates while the MCP server runs. Optional.
	Prompts mcp.PromptWatcher
}

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	historyService  driving.ArticleService
	writerFactory   WriterFactory
	pageLoader      PageLoader
	promptWatcher   mcp.PromptWatcher
)

var errNoWriter = errors.New("article writer not configured")

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Write cited research articles from web sources",
	Long: `Quill researches a topic, gathers sources from the web or local files,
and writes a structured research article in which every claim cites the
source it came from.

Configure providers first:
  quill settings embedding
  quill settings llm
  quill settings research

Then:
  quill generate "coral reef bleaching"`,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug and progress logs to stderr")
}

// SetServices installs the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	historyService = s.History
	writerFactory = s.NewWriter
	pageLoader = s.Files
	promptWatcher = s.Prompts
}

// SetVersion sets the version reported by 'quill version'.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openWriter creates the article writer, returning a no-op release on error.
func openWriter() (driving.ArticleService, func(), error) {
	if writerFactory == nil {
		return nil, func() {}, errNoWriter
	}
	writer, release, err := writerFactory()
	if err != nil {
		return nil, func() {}, err
	}
	if release == nil {
		release = func() {}
	}
	return writer, release, nil
}

// loadFiles reads --file sources.
func loadFiles(ctx context.Context, paths []string) ([]domain.Page, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if pageLoader == nil {
		return nil, errors.New("file loader not configured")
	}
	return pageLoader.FetchAll(ctx, paths)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
