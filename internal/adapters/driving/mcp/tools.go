package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks used as context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Failed  bool     `json:"failed,omitempty"`
	Sources []string `json:"sources"`
}

// CheckRuleInput is the input schema for the check_rule tool.
type CheckRuleInput struct {
	ID       string `json:"id" jsonschema:"rule identifier"`
	Category string `json:"category,omitempty" jsonschema:"rule category, used in the retrieval query"`
	Rule     string `json:"rule" jsonschema:"the requirement to check against the policy documents"`
	Severity string `json:"severity,omitempty" jsonschema:"rule severity"`
}

// FindingOutput is the output schema for the check_rule tool.
type FindingOutput struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Evidence    string `json:"evidence"`
	Remediation string `json:"remediation"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the indexed chunks most similar to a text",
	}, s.handleQuery)

	if s.ports.Answers != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the indexed documents",
		}, s.handleAsk)
	}

	if s.ports.Compliance != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "check_rule",
			Description: "Check one compliance rule against the indexed policy documents",
		}, s.handleCheckRule)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	results, err := s.ports.Retrieval.Query(ctx, input.Query, topK)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	metric := s.ports.Retrieval.Info().Metric
	output := QueryOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = ChunkOutput{
			Text:       results[i].Text(),
			Source:     results[i].Source(),
			Distance:   results[i].Distance,
			Similarity: domain.Similarity(metric, results[i].Distance),
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answers == nil {
		return nil, AskOutput{}, ErrAnswersDisabled
	}

	answer, err := s.ports.Answers.Ask(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Failed:  answer.Failed,
		Sources: make([]string, len(answer.Sources)),
	}
	for i := range answer.Sources {
		output.Sources[i] = answer.Sources[i].Source()
	}

	return nil, output, nil
}

// handleCheckRule handles the check_rule tool invocation.
func (s *Server) handleCheckRule(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckRuleInput,
) (*mcp.CallToolResult, FindingOutput, error) {
	if s.ports.Compliance == nil {
		return nil, FindingOutput{}, ErrComplianceDisabled
	}

	finding := s.ports.Compliance.Check(ctx, domain.Rule{
		ID:       input.ID,
		Category: input.Category,
		Rule:     input.Rule,
		Severity: input.Severity,
	})

	return nil, FindingOutput{
		ID:          finding.Rule.ID,
		Status:      finding.Status.String(),
		Evidence:    finding.Evidence,
		Remediation: finding.Remediation,
	}, nil
}
