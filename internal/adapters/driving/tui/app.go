package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/views/chunk"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/views/query"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// queryView serves both retrieval and question answering.
	queryView *query.View

	// chunkView shows one retrieved chunk in full.
	chunkView *chunk.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrInvalidPorts)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	opts := menu.Options{Info: ports.Retrieval.Info(), AskEnabled: ports.Answers != nil}
	if ports.Answers != nil {
		opts.Profile = ports.Answers.Profile()
	}

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s, opts),
		queryView:   query.NewView(s, km, ports.Retrieval, ports.Answers),
		chunkView:   chunk.NewView(s),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.queryView.WithContext(ctx)
	return a
}

// WithTopK sets how many chunks each query retrieves.
func (a *App) WithTopK(topK int) *App {
	a.queryView.WithTopK(topK)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ragkit"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.QueryCompleted:
		a.err = msg.Err
		a.queryView, cmd = a.queryView.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		a.err = msg.Err
		a.queryView, cmd = a.queryView.Update(msg)
		return a, cmd

	case messages.ChunkSelected:
		a.chunkView.SetResult(msg.Result, a.ports.Retrieval.Info().Metric, a.queryView.Mode())
		a.currentView = messages.ViewChunk
		return a, nil

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewQuery || a.currentView == messages.ViewAsk {
			a.queryView, cmd = a.queryView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewQuery, messages.ViewAsk:
		a.queryView, cmd = a.queryView.Update(msg)
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewQuery, messages.ViewAsk:
		a.queryView, cmd = a.queryView.Update(msg)
		// Tab switches mode inside the query view
		a.currentView = a.queryView.Mode()
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" || msg.String() == "?" {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// switchView activates view, resetting the query view when entered from the menu.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewQuery, messages.ViewAsk:
		if view == messages.ViewAsk && a.ports.Answers == nil {
			a.currentView = messages.ViewQuery
		}
		// Returning from a chunk keeps the results on screen
		if from != messages.ViewChunk {
			a.queryView.Reset()
		}
		a.queryView.SetMode(a.currentView)
		return a.queryView.Init()
	case messages.ViewMenu:
		a.err = nil
	case messages.ViewChunk, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewQuery, messages.ViewAsk:
		return a.queryView.View()
	case messages.ViewChunk:
		return a.chunkView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  ?           Help
  q           Quit

Query / Ask:
  (type)      Enter query or question
  enter       Submit
  tab         Switch between query and ask
  esc         Back to menu

Results:
  j/k, ↑/↓    Navigate chunks
  enter       Open chunk
  n, /        New query

Chunk:
  j/k, PgUp/PgDn  Scroll
  g/G         Top/bottom
  esc         Back to results

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Results returns the chunks currently listed in the query view.
func (a *App) Results() []domain.QueryResult {
	return a.queryView.Results()
}

// Answer returns the last generated answer, if any.
func (a *App) Answer() *domain.Answer {
	return a.queryView.Answer()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and its views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.queryView.SetDimensions(width, height)
	a.chunkView.SetDimensions(width, height)
}
