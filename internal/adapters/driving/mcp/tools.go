package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/services"
	"github.com/custodia-labs/quill/internal/logger"
)

// SourceInput is a caller-supplied source document.
type SourceInput struct {
	Title   string `json:"title,omitempty" jsonschema:"title used for the citation"`
	URL     string `json:"url,omitempty" jsonschema:"where the text came from, used for the citation"`
	Content string `json:"content" jsonschema:"plain text of the source"`
}

// GenerateSectionInput is the input schema for the generate_section tool.
type GenerateSectionInput struct {
	Topic   string        `json:"topic" jsonschema:"the research topic"`
	Section string        `json:"section" jsonschema:"the section to write, e.g. Introduction"`
	Sources []SourceInput `json:"sources" jsonschema:"source texts to ground the section in"`
}

// GenerateSectionOutput is the output schema for the generate_section tool.
type GenerateSectionOutput struct {
	Section    string   `json:"section"`
	Content    string   `json:"content"`
	References string   `json:"references,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// GenerateArticleInput is the input schema for the generate_article tool.
type GenerateArticleInput struct {
	Topic   string        `json:"topic" jsonschema:"the research topic"`
	Sources []SourceInput `json:"sources,omitempty" jsonschema:"optional source texts; when omitted sources are discovered online"`
}

// GenerateArticleOutput is the output schema for the generate_article tool.
type GenerateArticleOutput struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	Markdown string `json:"markdown"`
}

// ListArticlesInput is the input schema for the list_articles tool.
type ListArticlesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of articles to return (default 20)"`
}

// ListArticlesOutput is the output schema for the list_articles tool.
type ListArticlesOutput struct {
	Articles []ArticleInfo `json:"articles"`
	Count    int           `json:"count"`
}

// ArticleInfo is a stored article listing entry.
type ArticleInfo struct {
	ID        string `json:"id"`
	URI       string `json:"uri"`
	Topic     string `json:"topic"`
	Sections  int    `json:"sections"`
	Sources   int    `json:"sources"`
	CreatedAt string `json:"created_at"`
}

// defaultListLimit caps list_articles when no limit is given.
const defaultListLimit = 20

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_section",
		Description: "Write one cited article section from the supplied source texts",
	}, s.handleGenerateSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_article",
		Description: "Research a topic and write a full cited article",
	}, s.handleGenerateArticle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_articles",
		Description: "List previously generated articles, newest first",
	}, s.handleListArticles)
}

// handleGenerateSection handles the generate_section tool invocation.
func (s *Server) handleGenerateSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateSectionInput,
) (*mcp.CallToolResult, GenerateSectionOutput, error) {
	if len(input.Sources) == 0 {
		return nil, GenerateSectionOutput{}, errors.New("at least one source is required")
	}

	article, err := s.ports.Article.WriteSection(ctx, input.Topic, input.Section, toPages(input.Sources))
	if err != nil {
		return nil, GenerateSectionOutput{}, err
	}

	section := article.Sections[0]
	return nil, GenerateSectionOutput{
		Section:    section.Name,
		Content:    section.Content,
		References: article.References,
		Sources:    article.Sources,
	}, nil
}

// handleGenerateArticle handles the generate_article tool invocation.
func (s *Server) handleGenerateArticle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateArticleInput,
) (*mcp.CallToolResult, GenerateArticleOutput, error) {
	var (
		article *domain.Article
		err     error
	)
	if len(input.Sources) > 0 {
		article, err = s.ports.Article.GenerateFromContent(ctx, input.Topic, toPages(input.Sources), nil)
	} else {
		article, err = s.ports.Article.Generate(ctx, input.Topic, nil)
	}
	if article == nil {
		return nil, GenerateArticleOutput{}, err
	}
	if err != nil {
		// The article was written but could not be stored.
		logger.Warn("article %s not saved: %v", article.ID, err)
	}

	markdown, err := services.RenderMarkdown(article, services.ExportOptions{})
	if err != nil {
		return nil, GenerateArticleOutput{}, err
	}

	return nil, GenerateArticleOutput{
		ID:       article.ID,
		URI:      articleURI(article.ID),
		Markdown: markdown,
	}, nil
}

// handleListArticles handles the list_articles tool invocation.
func (s *Server) handleListArticles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListArticlesInput,
) (*mcp.CallToolResult, ListArticlesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	summaries, err := s.ports.Article.List(ctx)
	if err != nil {
		return nil, ListArticlesOutput{}, err
	}
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	output := ListArticlesOutput{
		Articles: make([]ArticleInfo, len(summaries)),
		Count:    len(summaries),
	}
	for i, a := range summaries {
		output.Articles[i] = toArticleInfo(a)
	}

	return nil, output, nil
}

func toPages(sources []SourceInput) []domain.Page {
	pages := make([]domain.Page, len(sources))
	for i, src := range sources {
		pages[i] = domain.Page{URL: src.URL, Title: src.Title, Content: src.Content}
	}
	return pages
}

func toArticleInfo(a domain.ArticleSummary) ArticleInfo {
	return ArticleInfo{
		ID:        a.ID,
		URI:       articleURI(a.ID),
		Topic:     a.Topic,
		Sections:  a.Sections,
		Sources:   a.Sources,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
