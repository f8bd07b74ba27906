package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill/internal/core/services"
)

var (
	articlesFrontMatter bool
	articlesOutput      string
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Manage generated articles",
	Long:  `List, view, export, or delete previously generated articles.`,
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated articles, newest first",
	Args:  cobra.NoArgs,
	RunE:  runArticlesList,
}

var articlesShowCmd = &cobra.Command{
	Use:   "show [article-id]",
	Short: "Print an article as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runArticlesShow,
}

var articlesExportCmd = &cobra.Command{
	Use:   "export [article-id]",
	Short: "Write an article to a markdown file",
	Long: `Writes the article to a markdown file. Without --output the file is named
after the topic, e.g. "coral_reefs_article.md".`,
	Args: cobra.ExactArgs(1),
	RunE: runArticlesExport,
}

var articlesDeleteCmd = &cobra.Command{
	Use:   "delete [article-id]",
	Short: "Delete an article",
	Args:  cobra.ExactArgs(1),
	RunE:  runArticlesDelete,
}

func init() {
	articlesShowCmd.Flags().BoolVar(&articlesFrontMatter, "front-matter", false, "prepend YAML front matter")
	articlesExportCmd.Flags().BoolVar(&articlesFrontMatter, "front-matter", false, "prepend YAML front matter")
	articlesExportCmd.Flags().StringVarP(&articlesOutput, "output", "o", "", "output file path")

	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesShowCmd)
	articlesCmd.AddCommand(articlesExportCmd)
	articlesCmd.AddCommand(articlesDeleteCmd)
	rootCmd.AddCommand(articlesCmd)
}

func runArticlesList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("article history not configured")
	}

	summaries, err := historyService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No articles yet. Run 'quill generate <topic>' to write one.")
		return nil
	}

	cmd.Println("Articles:")
	cmd.Println()
	for _, a := range summaries {
		cmd.Printf("  %s\n", a.ID)
		cmd.Printf("    Topic:    %s\n", a.Topic)
		cmd.Printf("    Created:  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Printf("    Sections: %d  Sources: %d\n", a.Sections, a.Sources)
		cmd.Println()
	}

	cmd.Printf("Total: %d articles\n", len(summaries))
	return nil
}

func runArticlesShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("article history not configured")
	}

	article, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}

	return writeArticle(cmd, article, "", articlesFrontMatter)
}

func runArticlesExport(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("article history not configured")
	}

	article, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}

	path := articlesOutput
	if path == "" {
		path = services.ExportFileName(article.Topic)
	}
	return writeArticle(cmd, article, path, articlesFrontMatter)
}

func runArticlesDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("article history not configured")
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	cmd.Printf("Deleted article %s\n", args[0])
	return nil
}
