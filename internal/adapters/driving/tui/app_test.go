package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/quill/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/quill/internal/core/domain"
)

func testArticle() *domain.Article {
	return &domain.Article{
		ID:    "a1",
		Topic: "Honey bees",
		Sections: []domain.Section{
			{Name: "Introduction", Content: "Bees dance [1]."},
			{Name: "Conclusion", Content: "Bees matter [1]."},
		},
		Sources: []string{"https://example.com/bees"},
	}
}

func newTestApp(t *testing.T, generate GenerateFunc) *App {
	t.Helper()
	app, err := NewApp("Honey bees", generate)
	require.NoError(t, err)
	return app
}

func okGenerate(_ context.Context, progress domain.ProgressFunc) (*domain.Article, error) {
	progress(domain.Progress{Stage: domain.StageResearch, Fraction: 0.1, Message: "Found 3 sources"})
	progress(domain.Progress{Stage: domain.StageWriting, Fraction: 0.6, Message: "Writing Introduction"})
	return testArticle(), nil
}

func TestNewApp_RequiresGenerator(t *testing.T) {
	app, err := NewApp("topic", nil)

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingGenerator)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, okGenerate)

	assert.NotNil(t, app.Init())
}

func TestApp_StartReportsProgressThenCompletes(t *testing.T) {
	app := newTestApp(t, okGenerate)

	msg := app.start()()

	completed, ok := msg.(messages.GenerationCompleted)
	require.True(t, ok)
	require.NoError(t, completed.Err)
	assert.Equal(t, "a1", completed.Article.ID)

	first := waitFor(app.updates)()
	second := waitFor(app.updates)()
	closed := waitFor(app.updates)()

	assert.Equal(t, domain.StageResearch, first.(messages.ProgressUpdated).Progress.Stage)
	assert.Equal(t, domain.StageWriting, second.(messages.ProgressUpdated).Progress.Stage)
	assert.Nil(t, closed)
}

func TestApp_ProgressUpdates(t *testing.T) {
	app := newTestApp(t, okGenerate)

	_, cmd := app.Update(messages.ProgressUpdated{Progress: domain.Progress{
		Stage: domain.StageResearch, Fraction: 0.1, Message: "Found 3 sources",
	}})
	assert.NotNil(t, cmd)
	assert.Equal(t, 0.1, app.Progress().Fraction)
	assert.Empty(t, app.Steps())

	app.Update(messages.ProgressUpdated{Progress: domain.Progress{
		Stage: domain.StageProcessing, Fraction: 0.3, Message: "Indexed 12 chunks",
	}})
	assert.Equal(t, []string{"Found 3 sources"}, app.Steps())
	assert.Equal(t, domain.StageProcessing, app.status.Stage())
	assert.Contains(t, app.View(), "Indexed 12 chunks")
}

func TestApp_StepLogIsBounded(t *testing.T) {
	app := newTestApp(t, okGenerate)

	stages := []domain.Stage{domain.StageResearch, domain.StageProcessing}
	for i := 0; i < maxSteps+5; i++ {
		app.Update(messages.ProgressUpdated{Progress: domain.Progress{
			Stage: stages[i%2], Message: "step",
		}})
	}

	assert.Len(t, app.Steps(), maxSteps)
}

func TestApp_CompletedSuccessfully(t *testing.T) {
	app := newTestApp(t, okGenerate)

	_, cmd := app.Update(messages.GenerationCompleted{Article: testArticle()})

	assert.NotNil(t, cmd)
	assert.Equal(t, status.StateDone, app.status.State())
	assert.Contains(t, app.View(), "Wrote 2 sections from 1 sources")

	article, err := app.Result()
	require.NoError(t, err)
	assert.Equal(t, "a1", article.ID)
}

func TestApp_CompletedWithError(t *testing.T) {
	app := newTestApp(t, okGenerate)
	genErr := errors.New("no sources found")

	_, cmd := app.Update(messages.GenerationCompleted{Err: genErr})

	assert.Nil(t, cmd)
	assert.Equal(t, status.StateError, app.status.State())
	assert.Contains(t, app.View(), "no sources found")

	_, err := app.Result()
	assert.ErrorIs(t, err, genErr)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestApp_QuitCancelsGeneration(t *testing.T) {
	app := newTestApp(t, okGenerate)
	ctx := app.ctx

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.NotNil(t, cmd)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, app.View(), "Cancelled")

	_, err := app.Result()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestApp_OtherKeysIgnoredWhileRunning(t *testing.T) {
	app := newTestApp(t, okGenerate)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Nil(t, cmd)
	assert.NoError(t, app.ctx.Err())
}

func TestApp_ResultBeforeDone(t *testing.T) {
	app := newTestApp(t, okGenerate)

	_, err := app.Result()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t, okGenerate)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, app.status.Width())
	assert.Equal(t, 60, app.bar.Width)

	app.Update(tea.WindowSizeMsg{Width: 4, Height: 40})
	assert.Equal(t, 10, app.bar.Width)
}

func TestApp_WithContextCancelledByParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	app := newTestApp(t, okGenerate).WithContext(parent)

	cancel()

	assert.ErrorIs(t, app.ctx.Err(), context.Canceled)
}
