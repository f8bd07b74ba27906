package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/services"
)

const (
	// URIScheme is the custom URI scheme for Quill resources.
	uriScheme = "quill://"

	articlesPrefix = uriScheme + "articles/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing articles.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "articles",
		Name:        "articles",
		Description: "Previously generated articles, newest first",
		MIMEType:    "application/json",
	}, s.handleArticlesResource)

	// Template for a single article.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: articlesPrefix + "{articleId}",
		Name:        "article",
		Description: "A generated article rendered as markdown",
		MIMEType:    "text/markdown",
	}, s.handleArticleResource)
}

// handleArticlesResource returns every stored article summary.
func (s *Server) handleArticlesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	summaries, err := s.ports.Article.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	infos := make([]ArticleInfo, len(summaries))
	for i, a := range summaries {
		infos[i] = toArticleInfo(a)
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling articles: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleArticleResource returns a stored article as markdown.
func (s *Server) handleArticleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract articleId from URI: quill://articles/{articleId}
	id := extractArticleID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	article, err := s.ports.Article.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}

	markdown, err := services.RenderMarkdown(article, services.ExportOptions{FrontMatter: true})
	if err != nil {
		return nil, fmt.Errorf("rendering article: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     markdown,
		}},
	}, nil
}

// articleURI returns the resource URI of an article.
func articleURI(id string) string {
	return articlesPrefix + id
}

// extractArticleID extracts the article ID from a URI like quill://articles/{articleId}.
func extractArticleID(uri string) string {
	if !strings.HasPrefix(uri, articlesPrefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, articlesPrefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
