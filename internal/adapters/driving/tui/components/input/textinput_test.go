package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
)

func TestNewPromptInput(t *testing.T) {
	input := NewPromptInput(styles.DefaultStyles(), "Query", "Enter a query...")

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.Equal(t, "Query", input.Label())
	assert.Equal(t, "Enter a query...", input.Placeholder())
	assert.True(t, input.Focused())
}

func TestNewPromptInput_NilStyles(t *testing.T) {
	input := NewPromptInput(nil, "Query", "")

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestPromptInput_Init(t *testing.T) {
	input := NewPromptInput(nil, "Query", "")

	assert.NotNil(t, input.Init())
}

func TestPromptInput_Update(t *testing.T) {
	input := NewPromptInput(nil, "Query", "")

	updated, _ := input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, input, updated)
	assert.Equal(t, "a", input.Value())
}

func TestPromptInput_View(t *testing.T) {
	input := NewPromptInput(nil, "Ask", "")

	assert.Contains(t, input.View(), "Ask")
}

func TestPromptInput_SetPrompt(t *testing.T) {
	input := NewPromptInput(nil, "Query", "Enter a query...")

	input.SetPrompt("Ask", "Enter a question...")

	assert.Equal(t, "Ask", input.Label())
	assert.Equal(t, "Enter a question...", input.Placeholder())
	assert.Contains(t, input.View(), "Ask")
}

func TestPromptInput_ValueAndReset(t *testing.T) {
	input := NewPromptInput(nil, "Query", "")

	input.SetValue("chest pain")
	assert.Equal(t, "chest pain", input.Value())

	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestPromptInput_FocusBlur(t *testing.T) {
	input := NewPromptInput(nil, "Query", "")

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestPromptInput_SetWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantInner int
	}{
		{"wide", 100, 100 - len("Query") - 6},
		{"narrow clamps", 10, minInputWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewPromptInput(nil, "Query", "")
			input.SetWidth(tt.width)

			assert.Equal(t, tt.width, input.Width())
			assert.Equal(t, tt.wantInner, input.textinput.Width)
		})
	}
}
