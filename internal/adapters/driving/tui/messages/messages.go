// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// QueryRequested is a command to retrieve chunks for a query.
type QueryRequested struct {
	Query string
	TopK  int
}

// QueryCompleted carries retrieval results back to the model.
type QueryCompleted struct {
	Query   string
	Results []domain.QueryResult
	Err     error
}

// AnswerCompleted carries a generated answer back to the model.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// ChunkSelected is sent when a result is opened.
type ChunkSelected struct {
	Result domain.QueryResult
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewQuery is the retrieval input and results view.
	ViewQuery
	// ViewAsk is the question answering view.
	ViewAsk
	// ViewChunk shows the full text of one retrieved chunk.
	ViewChunk
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewQuery:
		return "query"
	case ViewAsk:
		return "ask"
	case ViewChunk:
		return "chunk"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
