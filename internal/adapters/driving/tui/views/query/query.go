// Package query provides the retrieval and question answering view for the TUI.
package query

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

const (
	queryLabel       = "Query"
	queryPlaceholder = "Enter text to retrieve similar chunks..."
	askLabel         = "Ask"
	askPlaceholder   = "Ask a question about the corpus..."
)

// View represents the query view with input, answer pane, results list and
// status bar. In ViewQuery mode it lists retrieved chunks; in ViewAsk mode it
// shows a generated answer above the chunks it was grounded on.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PromptInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	answers   driving.AnswerService
	ctx       context.Context
	topK      int

	mode       messages.ViewType
	answer     *domain.Answer
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new query view. answers may be nil, which disables ask mode.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	answers driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewPromptInput(s, queryLabel, queryPlaceholder),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		answers:    answers,
		ctx:        context.Background(),
		topK:       domain.DefaultTopK,
		mode:       messages.ViewQuery,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTopK sets how many chunks a query retrieves.
func (v *View) WithTopK(topK int) *View {
	if topK > 0 {
		v.topK = topK
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the query view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QueryCompleted:
		v.handleQueryCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyTab {
		if v.mode == messages.ViewAsk {
			v.SetMode(messages.ViewQuery)
		} else if v.answers != nil {
			v.SetMode(messages.ViewAsk)
		}
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode
	switch msg.String() {
	case "enter":
		if result := v.list.SelectedResult(); result != nil {
			selected := *result
			return v, func() tea.Msg {
				return messages.ChunkSelected{Result: selected}
			}
		}
	case "n", "/":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

func (v *View) submit() (*View, tea.Cmd) {
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return v, nil
	}

	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateWorking)

	if v.mode == messages.ViewAsk {
		v.statusbar.SetMessage("Generating answer...")
		return v, v.performAsk(text)
	}
	v.statusbar.SetMessage("Retrieving...")
	return v, v.performQuery(text)
}

func (v *View) performQuery(text string) tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		results, err := v.retrieval.Query(v.ctx, text, v.topK)
		return messages.QueryCompleted{Query: text, Results: results, Err: err}
	}
}

func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := v.answers.Ask(v.ctx, question, v.topK)
		return messages.AnswerCompleted{Answer: answer, Err: err}
	}
}

func (v *View) handleQueryCompleted(msg messages.QueryCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.answer = nil
	v.showResults(msg.Results)
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.answer = msg.Answer
	if msg.Answer == nil {
		v.showResults(nil)
		return
	}
	v.showResults(msg.Answer.Sources)
	if msg.Answer.Failed {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage("answer generation failed")
	}
}

func (v *View) showResults(results []domain.QueryResult) {
	v.list.SetResults(results, v.metric())
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(results))
	v.focusInput = len(results) == 0
	if v.focusInput {
		v.input.Focus()
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

func (v *View) metric() domain.DistanceMetric {
	if v.retrieval == nil {
		return ""
	}
	return v.retrieval.Info().Metric
}

// View renders the query view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "ragkit · retrieve"
	if v.mode == messages.ViewAsk {
		title = "ragkit · ask"
	}
	sections := []string{v.styles.Title.Render(title), "", v.input.View(), ""}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		pane := v.styles.Answer.Width(max(v.width-4, 20))
		if v.answer.Failed {
			pane = pane.Foreground(v.styles.Theme().Error)
		}
		sections = append(sections, pane.Render(v.answer.Text), "")
		if len(v.answer.Sources) > 0 {
			sections = append(sections, v.styles.Subtitle.Render("Sources"))
		}
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetMode switches between retrieval and answering. ViewAsk is ignored when
// no answer service is configured.
func (v *View) SetMode(mode messages.ViewType) {
	if mode == messages.ViewAsk && v.answers == nil {
		return
	}
	if mode != messages.ViewAsk {
		mode = messages.ViewQuery
	}
	v.mode = mode
	if mode == messages.ViewAsk {
		v.input.SetPrompt(askLabel, askPlaceholder)
	} else {
		v.input.SetPrompt(queryLabel, queryPlaceholder)
	}
}

// Mode returns the active mode.
func (v *View) Mode() messages.ViewType {
	return v.mode
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Results returns the current results.
func (v *View) Results() []domain.QueryResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Answer returns the last generated answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.input.SetValue("")
	v.input.Focus()
	v.list.SetResults(nil, "")
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
}
