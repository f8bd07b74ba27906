package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill/internal/adapters/driving/tui"
	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/services"
)

var (
	generateOutput      string
	generateFrontMatter bool
	generateFiles       []string
	generatePlain       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Research a topic and write a cited article",
	Long: `Discovers sources for the topic, fetches and indexes them, then writes
every configured section with numbered citations and a reference list.

Use --file to write from local documents instead of searching the web.
Progress is shown interactively when stdout is a terminal; use --plain for
line-based progress on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write the article to this file instead of stdout")
	generateCmd.Flags().BoolVar(&generateFrontMatter, "front-matter", false, "prepend YAML front matter")
	generateCmd.Flags().StringSliceVarP(&generateFiles, "file", "f", nil, "local source document (repeatable)")
	generateCmd.Flags().BoolVar(&generatePlain, "plain", false, "disable the interactive progress view")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	if topic == "" {
		return errors.New("topic must not be empty")
	}
	ctx := cmd.Context()

	pages, err := loadFiles(ctx, generateFiles)
	if err != nil {
		return fmt.Errorf("failed to read sources: %w", err)
	}

	writer, release, err := openWriter()
	if err != nil {
		return err
	}
	defer release()

	generate := func(ctx context.Context, progress domain.ProgressFunc) (*domain.Article, error) {
		if len(pages) > 0 {
			return writer.GenerateFromContent(ctx, topic, pages, progress)
		}
		return writer.Generate(ctx, topic, progress)
	}

	var article *domain.Article
	if !generatePlain && isTerminal(cmd.OutOrStdout()) {
		article, err = runProgressView(ctx, topic, generate)
	} else {
		article, err = generate(ctx, plainProgress(cmd))
	}
	if article == nil {
		if err == nil {
			err = domain.ErrGenerationFailed
		}
		return fmt.Errorf("generation failed: %w", err)
	}
	if err != nil {
		cmd.PrintErrf("Warning: article not saved: %v\n", err)
	}

	return writeArticle(cmd, article, generateOutput, generateFrontMatter)
}

// runProgressView drives generation from the interactive progress view.
func runProgressView(ctx context.Context, topic string, generate tui.GenerateFunc) (*domain.Article, error) {
	app, err := tui.NewApp(topic, generate)
	if err != nil {
		return nil, err
	}
	return app.WithContext(ctx).Run(tea.WithOutput(os.Stderr))
}

// plainProgress prints one line per progress message to stderr.
func plainProgress(cmd *cobra.Command) domain.ProgressFunc {
	last := ""
	return func(p domain.Progress) {
		line := p.Message
		if line == "" {
			line = p.Stage.Description()
		}
		if line == last {
			return
		}
		last = line
		cmd.PrintErrf("[%3.0f%%] %s\n", p.Fraction*100, line)
	}
}

// writeArticle renders the article as markdown to path, or to stdout when
// path is empty.
func writeArticle(cmd *cobra.Command, article *domain.Article, path string, frontMatter bool) error {
	markdown, err := services.RenderMarkdown(article, services.ExportOptions{FrontMatter: frontMatter})
	if err != nil {
		return fmt.Errorf("failed to render article: %w", err)
	}

	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
		return err
	}

	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil { //nolint:gosec // exported articles are not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmd.Printf("Article written to %s\n", path)
	return nil
}
