package list

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func testResults(n int) []domain.QueryResult {
	results := make([]domain.QueryResult, n)
	for i := range results {
		results[i] = domain.QueryResult{
			Metadata: domain.RecordMetadata{
				ChunkID: fmt.Sprintf("c%d", i),
				Source:  fmt.Sprintf("doc%d.txt", i),
				Text:    fmt.Sprintf("chunk text %d", i),
			},
			Distance: 0.1 * float64(i),
		}
	}
	return results
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.True(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, domain.MetricCosine, list.Metric())
	assert.Nil(t, list.SelectedResult())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_View_Empty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No results")
}

func TestResultList_View_WithResults(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(testResults(2), domain.MetricCosine)

	view := list.View()

	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "[1] doc0.txt")
	assert.Contains(t, view, "chunk text 1")
	assert.Contains(t, view, "1.000")
	assert.Contains(t, view, "0.900")
	assert.Contains(t, view, "> ")
}

func TestResultList_View_L2Similarity(t *testing.T) {
	list := NewResultList(nil)
	results := testResults(2)
	results[1].Distance = 1
	list.SetResults(results, domain.MetricL2)

	assert.Equal(t, domain.MetricL2, list.Metric())
	assert.Contains(t, list.View(), "0.500")
}

func TestResultList_View_Scrolls(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(80, 6)
	list.SetResults(testResults(5), "")
	list.SetSelected(4)

	view := list.View()

	assert.Contains(t, view, "doc4.txt")
	assert.NotContains(t, view, "doc0.txt")
}

func TestResultList_View_FlattensAndTruncates(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(40, 10)
	list.SetResults([]domain.QueryResult{{
		Metadata: domain.RecordMetadata{Source: "a.txt", Text: "line one\nline two " + strings.Repeat("x", 100)},
	}}, "")

	view := list.View()

	assert.Contains(t, view, "line one line two")
	assert.Contains(t, view, "...")
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(testResults(3), "")

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyUp})
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, list.Selected())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SetSelected(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(testResults(3), "")

	list.SetSelected(2)
	require.NotNil(t, list.SelectedResult())
	assert.Equal(t, "c2", list.SelectedResult().Metadata.ChunkID)

	list.SetSelected(10)
	assert.Equal(t, 2, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 2, list.Selected())
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(testResults(3), "")
	list.SetSelected(2)

	list.SetResults(testResults(1), "")

	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 1, list.Count())
	assert.Len(t, list.Results(), 1)
}

func TestResultList_SetDimensions(t *testing.T) {
	list := NewResultList(nil)

	list.SetDimensions(120, 40)

	assert.Equal(t, 120, list.Width())
	assert.Equal(t, 40, list.Height())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", truncate("héllo wörld again", 10))
}
