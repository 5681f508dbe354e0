// Package chunk provides the full text view of one retrieved chunk.
package chunk

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// reservedLines covers the title, provenance, separator and help footer.
const reservedLines = 8

// View shows a retrieved chunk's text and provenance with scrolling.
type View struct {
	styles *styles.Styles

	result       *domain.QueryResult
	metric       domain.DistanceMetric
	back         messages.ViewType
	lines        []string
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		back:   messages.ViewQuery,
		width:  80,
		height: 24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetResult shows result. back is the view esc returns to.
func (v *View) SetResult(result domain.QueryResult, metric domain.DistanceMetric, back messages.ViewType) {
	v.result = &result
	v.metric = metric
	v.back = back
	v.scrollOffset = 0
	v.wrapContent()
}

// Update handles messages for the chunk view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}
	return v, nil
}

// wrapContent splits the chunk text into lines that fit the view width.
func (v *View) wrapContent() {
	v.lines = nil
	if v.result == nil || v.result.Text() == "" {
		return
	}

	width := max(v.width-4, 20)
	for _, raw := range strings.Split(v.result.Text(), "\n") {
		runes := []rune(raw)
		for len(runes) > width {
			v.lines = append(v.lines, string(runes[:width]))
			runes = runes[width:]
		}
		v.lines = append(v.lines, string(runes))
	}
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	if v.result == nil {
		b.WriteString(v.styles.Title.Render("Chunk"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("(No chunk selected)"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	meta := v.result.Metadata
	b.WriteString(v.styles.Title.Render(meta.Source))
	b.WriteString("\n")
	similarity := domain.Similarity(v.metric, v.result.Distance)
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("chunk %d of document %s | distance %.4f | similarity ",
		meta.Position, meta.DocumentID, v.result.Distance)))
	b.WriteString(v.styles.Similarity(similarity).Render(fmt.Sprintf("%.3f", similarity)))
	b.WriteString("\n")
	if attrs := formatAttributes(meta.Metadata); attrs != "" {
		b.WriteString(v.styles.Source.Render(attrs))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
	}
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// formatAttributes renders loader attributes as sorted key=value pairs.
func formatAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return strings.Join(parts, "  ")
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Result returns the displayed chunk, if any.
func (v *View) Result() *domain.QueryResult {
	return v.result
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
