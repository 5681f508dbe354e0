package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/core/ports/driving"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// Ensure ComplianceService implements the interface.
var _ driving.ComplianceService = (*ComplianceService)(nil)

// DefaultComplianceTopK is the number of policy chunks retrieved per rule.
const DefaultComplianceTopK = 3

// errorRemediation is the remediation of a finding that could not be evaluated.
const errorRemediation = "Check logs"

// ComplianceService evaluates compliance rules against retrieved policy text.
type ComplianceService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	topK      int
	newID     func() string
}

// verdict is the JSON object the compliance prompt asks the model for.
type verdict struct {
	Status      string `json:"status"`
	Evidence    string `json:"evidence"`
	Remediation string `json:"remediation"`
}

// NewComplianceService creates a compliance service.
func NewComplianceService(
	retrieval driving.RetrievalService,
	llmService driven.LLMService,
	prompts driven.PromptStore,
) *ComplianceService {
	return &ComplianceService{
		retrieval: retrieval,
		llm:       llmService,
		prompts:   prompts,
		topK:      DefaultComplianceTopK,
		newID:     uuid.NewString,
	}
}

// Check evaluates one rule. Any failure becomes an Error finding.
func (s *ComplianceService) Check(ctx context.Context, rule domain.Rule) domain.Finding {
	if err := rule.Validate(); err != nil {
		return errorFinding(rule, fmt.Errorf("%w: rule needs an id and text", err))
	}

	query := fmt.Sprintf("policy regarding %s %s", rule.Category, rule.Rule)
	results, err := s.retrieval.Query(ctx, query, s.topK)
	if err != nil {
		return errorFinding(rule, err)
	}

	template, err := s.prompts.Load(driven.PromptComplianceCheck)
	if err != nil {
		return errorFinding(rule, err)
	}
	if err := domain.CheckPromptTemplate(template, 3); err != nil {
		return errorFinding(rule, fmt.Errorf("prompt %s: %w", driven.PromptComplianceCheck, err))
	}
	prompt := fmt.Sprintf(template, rule.Category, rule.Rule, JoinContext(results))

	if s.llm == nil {
		return errorFinding(rule, domain.ErrLLMUnavailable)
	}
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		logger.Warn("Rule %s: generation failed: %v", rule.ID, err)
		return errorFinding(rule, err)
	}

	v, err := parseVerdict(text)
	if err != nil {
		logger.Warn("Rule %s: %v", rule.ID, err)
		return errorFinding(rule, err)
	}

	return domain.Finding{
		Rule:        rule,
		Status:      domain.ParseComplianceStatus(v.Status),
		Evidence:    v.Evidence,
		Remediation: v.Remediation,
	}
}

// Audit evaluates rules in order and summarises the findings.
// It stops early only when ctx is done.
func (s *ComplianceService) Audit(ctx context.Context, rules []domain.Rule) (*domain.AuditReport, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules to audit", domain.ErrInvalidInput)
	}

	logger.Section("Compliance audit")
	logger.Info("Starting audit on %d rules", len(rules))

	findings := make([]domain.Finding, 0, len(rules))
	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("Checking rule %s (%d/%d)", rule.ID, i+1, len(rules))
		findings = append(findings, s.Check(ctx, rule))
	}

	report := &domain.AuditReport{
		ID:       s.newID(),
		Findings: findings,
		Summary:  domain.Summarise(findings),
	}
	logger.Info("Audit %s: %d/%d compliant (%.1f%%)",
		report.ID, report.Summary.Compliant, report.Summary.Total, report.Summary.Rate)
	return report, nil
}

func errorFinding(rule domain.Rule, err error) domain.Finding {
	msg := err.Error()
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		msg = generationMessage(err)
	}
	return domain.Finding{
		Rule:        rule,
		Status:      domain.StatusError,
		Evidence:    msg,
		Remediation: errorRemediation,
	}
}

// parseVerdict decodes the model's JSON verdict, tolerating a Markdown code
// fence or prose around the object.
func parseVerdict(text string) (verdict, error) {
	body := stripCodeFence(text)

	var v verdict
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		return v, nil
	}

	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return verdict{}, fmt.Errorf("no JSON object in model response %q", truncate(text, 80))
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &v); err != nil {
		return verdict{}, fmt.Errorf("decode model response: %w", err)
	}
	return v, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.Contains(t[:nl], "{") {
		t = t[nl+1:]
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
