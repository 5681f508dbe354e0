// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool // If true, selecting this item quits the app
}

// Options configures the menu content.
type Options struct {
	// Info describes the served index, shown under the title.
	Info domain.IndexInfo

	// Profile is the active answer profile. Empty when answering is off.
	Profile domain.Profile

	// AskEnabled adds the question answering entry.
	AskEnabled bool
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	opts     Options
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles, opts Options) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := []Item{{Label: "Query", View: messages.ViewQuery}}
	if opts.AskEnabled {
		items = append(items, Item{Label: "Ask", View: messages.ViewAsk})
	}
	items = append(items,
		Item{Label: "Help", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{
		styles: s,
		opts:   opts,
		items:  items,
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("ragkit"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Subtitle.Render(v.subtitle()))
	b.WriteString("\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(item.Label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(item.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

func (v *View) subtitle() string {
	info := v.opts.Info
	line := fmt.Sprintf("Index %s: %d chunks, %s metric", info.State, info.Count, info.Metric)
	if v.opts.Profile != "" {
		line += fmt.Sprintf(" | %s profile", v.opts.Profile)
	}
	return line
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries in display order.
func (v *View) Items() []Item {
	return v.items
}
