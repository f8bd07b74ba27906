// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow from the generation goroutine into
// the Elm architecture update loop.
package messages

import (
	"github.com/custodia-labs/quill/internal/core/domain"
)

// ProgressUpdated carries a progress report from the running generation.
type ProgressUpdated struct {
	Progress domain.Progress
}

// GenerationCompleted is sent once when generation returns.
// Article may be set alongside Err when the article was written but not saved.
type GenerationCompleted struct {
	Article *domain.Article
	Err     error
}
