package mcp

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	info    domain.IndexInfo
	err     error
	topK    int
}

func (m *mockRetrievalService) Query(_ context.Context, _ string, topK int) ([]domain.QueryResult, error) {
	m.topK = topK
	return m.results, m.err
}

func (m *mockRetrievalService) Info() domain.IndexInfo {
	return m.info
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, _ int) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) Profile() domain.Profile {
	return domain.ProfilePolicy
}

// mockComplianceService is a mock implementation of driving.ComplianceService.
type mockComplianceService struct {
	status domain.ComplianceStatus
	rule   domain.Rule
}

func (m *mockComplianceService) Check(_ context.Context, rule domain.Rule) domain.Finding {
	m.rule = rule
	return domain.Finding{Rule: rule, Status: m.status, Evidence: "section 4.2"}
}

func (m *mockComplianceService) Audit(_ context.Context, _ []domain.Rule) (*domain.AuditReport, error) {
	return &domain.AuditReport{}, nil
}

// mockRuleSource is a mock implementation of driven.RuleSource.
type mockRuleSource struct {
	rules []domain.Rule
	err   error
}

func (m *mockRuleSource) Rules() ([]domain.Rule, error) {
	return m.rules, m.err
}

func (m *mockRuleSource) Path() string {
	return "rules.json"
}

func hit(text, source string, distance float64) domain.QueryResult {
	return domain.QueryResult{
		Metadata: domain.RecordMetadata{Text: text, Source: source},
		Distance: distance,
	}
}
