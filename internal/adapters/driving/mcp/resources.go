package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragkit resources.
	uriScheme = "ragkit://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "State, size and embedding model of the served vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "Compliance rules available for checking",
		MIMEType:    "application/json",
	}, s.handleRulesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "rules/{ruleId}",
		Name:        "rule",
		Description: "A single compliance rule",
		MIMEType:    "application/json",
	}, s.handleRuleResource)
}

// handleIndexResource returns the index description.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResult(req.Params.URI, s.ports.Retrieval.Info())
}

// handleRulesResource returns every configured rule.
func (s *Server) handleRulesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Rules == nil {
		return jsonResult(req.Params.URI, []domain.Rule{})
	}

	rules, err := s.ports.Rules.Rules()
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return jsonResult(req.Params.URI, rules)
}

// handleRuleResource returns one rule by ID.
func (s *Server) handleRuleResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Rules == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract ruleId from URI: ragkit://rules/{ruleId}
	ruleID := extractRuleID(req.Params.URI)
	if ruleID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rules, err := s.ports.Rules.Rules()
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	for i := range rules {
		if rules[i].ID == ruleID {
			return jsonResult(req.Params.URI, rules[i])
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRuleID extracts the rule ID from a URI like ragkit://rules/{ruleId}.
func extractRuleID(uri string) string {
	const prefix = uriScheme + "rules/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
