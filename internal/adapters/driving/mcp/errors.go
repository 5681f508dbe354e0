// Package mcp provides an MCP (Model Context Protocol) server adapter for ragkit.
// It lets AI assistants query the vector index and ask grounded questions.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrAnswersDisabled is returned by the ask tool when no LLM is configured.
	ErrAnswersDisabled = errors.New("mcp: answering is not configured")

	// ErrComplianceDisabled is returned by the check_rule tool when no LLM is configured.
	ErrComplianceDisabled = errors.New("mcp: compliance checks are not configured")
)
