package mcp

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/ports/driving"
)

// PromptWatcher reloads prompt templates when they change on disk.
// Watch blocks until ctx is done.
type PromptWatcher interface {
	Watch(ctx context.Context, onChange func(name string)) error
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Article writes and retrieves articles.
	Article driving.ArticleService

	// Prompts is optional. When set, prompt edits take effect without
	// restarting the server.
	Prompts PromptWatcher
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Article == nil {
		return ErrMissingArticleService
	}
	return nil
}
