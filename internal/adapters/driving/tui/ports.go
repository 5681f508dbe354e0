// Package tui provides an interactive terminal user interface for ragkit.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers similarity queries against the index.
	Retrieval driving.RetrievalService

	// Answers generates grounded answers. Optional; the ask view is
	// disabled without it.
	Answers driving.AnswerService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(retrieval driving.RetrievalService, answers driving.AnswerService) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Answers:   answers,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
