package mcp

import (
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
)

// Ports aggregates the services exposed by the MCP server.
type Ports struct {
	// Retrieval answers similarity queries (required).
	Retrieval driving.RetrievalService

	// Answers generates grounded answers. Nil disables the ask tool.
	Answers driving.AnswerService

	// Compliance checks single rules. Nil disables the check_rule tool.
	Compliance driving.ComplianceService

	// Rules backs the rules resource. Nil serves an empty list.
	Rules driven.RuleSource
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
