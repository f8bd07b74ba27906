// Package mcp provides an MCP (Model Context Protocol) server adapter for Quill.
// It lets AI assistants write cited sections and articles and read back
// previously generated articles.
package mcp

import "errors"

// ErrMissingArticleService is returned when the article service is not provided.
var ErrMissingArticleService = errors.New("mcp: article service is required")
