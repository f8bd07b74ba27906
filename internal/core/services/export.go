package services

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// ExportOptions controls markdown rendering of an article.
type ExportOptions struct {
	// FrontMatter prepends a YAML metadata block.
	FrontMatter bool
}

// frontMatter is the YAML header written before an exported article.
type frontMatter struct {
	ID      string   `yaml:"id"`
	Topic   string   `yaml:"topic"`
	Created string   `yaml:"created"`
	Sources []string `yaml:"sources,omitempty"`
}

// RenderMarkdown renders the article as a markdown document: the topic as a
// level-one heading, each section as a level-two heading followed by its
// text, then the reference list. Blocks are separated by blank lines.
func RenderMarkdown(article *domain.Article, opts ExportOptions) (string, error) {
	blocks := make([]string, 0, len(article.Sections)+2)
	blocks = append(blocks, "# "+article.Topic)
	for _, s := range article.Sections {
		blocks = append(blocks, "## "+s.Name+"\n"+s.Content)
	}
	if article.References != "" {
		blocks = append(blocks, strings.TrimRight(article.References, "\n"))
	}
	body := strings.Join(blocks, "\n\n") + "\n"

	if !opts.FrontMatter {
		return body, nil
	}

	meta, err := yaml.Marshal(frontMatter{
		ID:      article.ID,
		Topic:   article.Topic,
		Created: article.CreatedAt.UTC().Format(time.RFC3339),
		Sources: article.Sources,
	})
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	return "---\n" + string(meta) + "---\n\n" + body, nil
}

// ExportFileName returns the default file name for an exported article.
func ExportFileName(topic string) string {
	name := strings.Join(strings.Fields(topic), "_")
	if name == "" {
		name = "untitled"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name) + "_article.md"
}
