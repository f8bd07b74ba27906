package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sectionFiles  []string
	sectionOutput string
)

var sectionCmd = &cobra.Command{
	Use:   "section [topic] [section]",
	Short: "Write one cited section from local documents",
	Long: `Indexes the given local documents and writes a single section about the
topic, followed by the references it cites. The result is not saved to the
article history.

Example:
  quill section "coral reefs" Introduction -f notes.md -f survey.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runSection,
}

func init() {
	sectionCmd.Flags().StringSliceVarP(&sectionFiles, "file", "f", nil, "local source document (repeatable)")
	sectionCmd.Flags().StringVarP(&sectionOutput, "output", "o", "", "write the section to this file instead of stdout")
	_ = sectionCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(sectionCmd)
}

func runSection(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pages, err := loadFiles(ctx, sectionFiles)
	if err != nil {
		return fmt.Errorf("failed to read sources: %w", err)
	}

	writer, release, err := openWriter()
	if err != nil {
		return err
	}
	defer release()

	article, err := writer.WriteSection(ctx, args[0], args[1], pages)
	if err != nil {
		return fmt.Errorf("failed to write section: %w", err)
	}

	return writeArticle(cmd, article, sectionOutput, false)
}
