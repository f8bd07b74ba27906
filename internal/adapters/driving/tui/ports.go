// Package tui renders live progress while an article is generated.
//
// The model follows the Elm architecture via Bubbletea: a generation
// goroutine reports progress over a channel and the view redraws a spinner,
// a progress bar and the log of completed steps.
package tui

import (
	"context"

	"github.com/custodia-labs/quill/internal/core/domain"
)

// GenerateFunc runs article generation, reporting progress through the given func.
// Callers typically close over driving.ArticleService.Generate or GenerateFromContent.
type GenerateFunc func(ctx context.Context, progress domain.ProgressFunc) (*domain.Article, error)
