package query

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

type mockRetrieval struct {
	results []domain.QueryResult
	err     error
	gotText string
	gotTopK int
}

func (m *mockRetrieval) Query(_ context.Context, text string, topK int) ([]domain.QueryResult, error) {
	m.gotText = text
	m.gotTopK = topK
	return m.results, m.err
}

func (m *mockRetrieval) Info() domain.IndexInfo {
	return domain.IndexInfo{State: domain.IndexReady, Metric: domain.MetricCosine}
}

type mockAnswers struct {
	answer  *domain.Answer
	err     error
	gotTopK int
}

func (m *mockAnswers) Ask(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	a := *m.answer
	a.Question = question
	return &a, nil
}

func (m *mockAnswers) Profile() domain.Profile { return domain.ProfilePolicy }

func hits(texts ...string) []domain.QueryResult {
	out := make([]domain.QueryResult, len(texts))
	for i, text := range texts {
		out[i] = domain.QueryResult{
			Metadata: domain.RecordMetadata{ChunkID: text, Source: text + ".txt", Text: text},
			Distance: 0.1 * float64(i),
		}
	}
	return out
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func newTestView(r *mockRetrieval, a *mockAnswers) *View {
	var v *View
	if a == nil {
		v = NewView(nil, nil, r, nil)
	} else {
		v = NewView(nil, nil, r, a)
	}
	v.SetDimensions(100, 40)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockRetrieval{}, nil)

	require.NotNil(t, v)
	assert.Equal(t, messages.ViewQuery, v.Mode())
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_QueryFlow(t *testing.T) {
	r := &mockRetrieval{results: hits("alpha", "beta")}
	v := newTestView(r, nil).WithTopK(3)

	typeText(v, "  chest pain  ")
	assert.Equal(t, "  chest pain  ", v.Input())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.InputFocused())

	msg := cmd()
	completed, ok := msg.(messages.QueryCompleted)
	require.True(t, ok)
	assert.Equal(t, "chest pain", r.gotText)
	assert.Equal(t, 3, r.gotTopK)

	v.Update(completed)
	assert.Len(t, v.Results(), 2)
	assert.False(t, v.InputFocused())
	assert.Contains(t, v.View(), "alpha.txt")
	assert.Contains(t, v.View(), "2 chunks")
}

func TestView_EmptyInputIgnored(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_QueryError(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v.Update(messages.QueryCompleted{Query: "q", Err: domain.ErrIndexNotReady})

	assert.ErrorIs(t, v.Err(), domain.ErrIndexNotReady)
	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "index not ready")
}

func TestView_NoResultsRefocusesInput(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v.Update(messages.QueryCompleted{Query: "q", Results: []domain.QueryResult{}})

	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "No results")
}

func TestView_ResultsNavigationAndOpen(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v.Update(messages.QueryCompleted{Results: hits("a", "b", "c")})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	selected, ok := cmd().(messages.ChunkSelected)
	require.True(t, ok)
	assert.Equal(t, "b", selected.Result.Text())
}

func TestView_NewQuery(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v.SetInput("old")
	v.Update(messages.QueryCompleted{Results: hits("a")})
	require.False(t, v.InputFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Input())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ToggleMode(t *testing.T) {
	t.Run("with answers", func(t *testing.T) {
		v := newTestView(&mockRetrieval{}, &mockAnswers{answer: &domain.Answer{}})

		v.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, messages.ViewAsk, v.Mode())
		assert.Contains(t, v.View(), "Ask")

		v.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, messages.ViewQuery, v.Mode())
	})

	t.Run("without answers", func(t *testing.T) {
		v := newTestView(&mockRetrieval{}, nil)

		v.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, messages.ViewQuery, v.Mode())

		v.SetMode(messages.ViewAsk)
		assert.Equal(t, messages.ViewQuery, v.Mode())
	})
}

func TestView_AskFlow(t *testing.T) {
	a := &mockAnswers{answer: &domain.Answer{Text: "Use MFA everywhere.", Sources: hits("policy")}}
	v := newTestView(&mockRetrieval{}, a)
	v.SetMode(messages.ViewAsk)

	typeText(v, "What about MFA?")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	completed, ok := cmd().(messages.AnswerCompleted)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultTopK, a.gotTopK)

	v.Update(completed)

	require.NotNil(t, v.Answer())
	assert.Equal(t, "What about MFA?", v.Answer().Question)
	out := v.View()
	assert.Contains(t, out, "Use MFA everywhere.")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "policy.txt")
}

func TestView_AskFailedAnswer(t *testing.T) {
	v := newTestView(&mockRetrieval{}, &mockAnswers{})

	v.Update(messages.AnswerCompleted{Answer: &domain.Answer{Text: "Error generating response: quota", Failed: true}})

	assert.NoError(t, v.Err())
	assert.Contains(t, v.View(), "answer generation failed")
}

func TestView_AskError(t *testing.T) {
	v := newTestView(&mockRetrieval{}, &mockAnswers{})

	v.Update(messages.AnswerCompleted{Err: domain.ErrLLMUnavailable})

	assert.ErrorIs(t, v.Err(), domain.ErrLLMUnavailable)
	assert.Nil(t, v.Answer())
}

func TestView_MissingServices(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	msg := v.performQuery("q")()
	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoRetrievalService}, msg)

	msg = v.performAsk("q")()
	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoAnswerService}, msg)
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Contains(t, v.View(), "Error: boom")
}

func TestView_Reset(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v.SetInput("q")
	v.Update(messages.QueryCompleted{Results: hits("a")})

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Equal(t, "", v.Input())
	assert.Nil(t, v.Answer())
	assert.NoError(t, v.Err())
}
