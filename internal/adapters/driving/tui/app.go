package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/quill/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/quill/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/quill/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/quill/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/quill/internal/core/domain"
)

// maxSteps bounds the step log shown under the progress bar.
const maxSteps = 8

// App is the progress view shown while an article is generated.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ctx is the context for cancellation.
	ctx    context.Context
	cancel context.CancelFunc

	topic    string
	generate GenerateFunc

	// updates carries progress from the generation goroutine.
	updates chan tea.Msg

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	bar     progress.Model
	status  *status.Bar

	current domain.Progress
	steps   []string

	article   *domain.Article
	err       error
	done      bool
	cancelled bool

	width int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a progress view that writes an article on topic using generate.
func NewApp(topic string, generate GenerateFunc) (*App, error) {
	if generate == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingGenerator)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Stage

	a := &App{
		topic:    topic,
		generate: generate,
		updates:  make(chan tea.Msg, 16),
		styles:   s,
		keymap:   km,
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient()),
		status:   status.NewBar(s, km),
		current:  domain.Progress{Stage: domain.StageResearch},
		width:    80,
	}
	return a.WithContext(context.Background()), nil
}

// WithContext sets the context generation runs under.
func (a *App) WithContext(ctx context.Context) *App {
	if a.cancel != nil {
		a.cancel()
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	return a
}

// Init implements tea.Model.
// It starts generation and begins listening for progress.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.start(), waitFor(a.updates))
}

// start runs generation in a Bubbletea command goroutine.
func (a *App) start() tea.Cmd {
	ctx, updates := a.ctx, a.updates
	return func() tea.Msg {
		report := func(p domain.Progress) {
			select {
			case updates <- messages.ProgressUpdated{Progress: p}:
			case <-ctx.Done():
			}
		}
		article, err := a.generate(ctx, report)
		close(updates)
		return messages.GenerationCompleted{Article: article, Err: err}
	}
}

// waitFor returns a command that delivers the next progress message.
func waitFor(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.bar.Width = max(min(msg.Width-8, 60), 10)
		a.status.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ProgressUpdated:
		return a, tea.Batch(a.applyProgress(msg.Progress), waitFor(a.updates))

	case messages.GenerationCompleted:
		return a.complete(msg)

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		model, cmd := a.bar.Update(msg)
		if bar, ok := model.(progress.Model); ok {
			a.bar = bar
		}
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.done {
		if keymap.Matches(msg.String(), a.keymap.Close) {
			return a, tea.Quit
		}
		return a, nil
	}

	if keymap.Matches(msg.String(), a.keymap.Quit) {
		a.cancelled = true
		a.cancel()
		a.status.SetState(status.StateCancelled)
		return a, tea.Quit
	}
	return a, nil
}

// applyProgress records a progress report and animates the bar towards it.
func (a *App) applyProgress(p domain.Progress) tea.Cmd {
	if p.Stage != a.current.Stage && a.current.Message != "" {
		a.pushStep(a.current.Message)
	}
	a.current = p
	a.status.SetStage(p.Stage)
	return a.bar.SetPercent(p.Fraction)
}

func (a *App) pushStep(step string) {
	a.steps = append(a.steps, step)
	if len(a.steps) > maxSteps {
		a.steps = a.steps[len(a.steps)-maxSteps:]
	}
}

// complete finishes the run. Successful runs quit immediately; failures stay
// on screen until closed.
func (a *App) complete(msg messages.GenerationCompleted) (tea.Model, tea.Cmd) {
	a.done = true
	a.article = msg.Article
	a.err = msg.Err
	a.cancel()

	if a.cancelled {
		return a, tea.Quit
	}
	if msg.Err != nil {
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		return a, nil
	}

	if a.current.Message != "" {
		a.pushStep(a.current.Message)
	}
	a.current = domain.Progress{Stage: domain.StageDone, Fraction: 1}
	a.status.SetState(status.StateDone)
	return a, tea.Batch(a.bar.SetPercent(1), tea.Quit)
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render(a.topic))
	b.WriteString("\n\n")

	for _, step := range a.steps {
		b.WriteString(a.styles.Muted.Render("✓ " + step))
		b.WriteString("\n")
	}

	switch {
	case a.cancelled:
		b.WriteString(a.styles.Warning.Render("Cancelled"))
	case a.done && a.err != nil:
		b.WriteString(a.styles.Error.Render(a.err.Error()))
	case a.done:
		b.WriteString(a.styles.Success.Render(fmt.Sprintf("Wrote %d sections from %d sources",
			len(a.articleSections()), a.sourceCount())))
	default:
		line := a.current.Message
		if line == "" {
			line = a.current.Stage.Description()
		}
		b.WriteString(a.spinner.View() + " " + a.styles.ForStage(a.current.Stage).Render(line))
	}
	b.WriteString("\n\n")
	b.WriteString(a.bar.View())
	b.WriteString("\n\n")
	b.WriteString(a.status.View())

	return a.styles.Box.Render(b.String())
}

func (a *App) articleSections() []domain.Section {
	if a.article == nil {
		return nil
	}
	return a.article.Sections
}

func (a *App) sourceCount() int {
	if a.article == nil {
		return 0
	}
	return len(a.article.Sources)
}

// Result returns the generated article once the view has finished.
// It returns ErrCancelled when the user quit first.
func (a *App) Result() (*domain.Article, error) {
	if a.cancelled || !a.done {
		return nil, ErrCancelled
	}
	return a.article, a.err
}

// Progress returns the latest progress report.
func (a *App) Progress() domain.Progress {
	return a.current
}

// Steps returns the completed step log.
func (a *App) Steps() []string {
	return a.steps
}

// Run starts the progress view and blocks until generation finishes or
// the user cancels.
func (a *App) Run(opts ...tea.ProgramOption) (*domain.Article, error) {
	p := tea.NewProgram(a, opts...)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running progress view: %w", err)
	}
	app, ok := final.(*App)
	if !ok {
		return nil, fmt.Errorf("running progress view: unexpected model %T", final)
	}
	return app.Result()
}
