package driving

import (
	"context"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// AnswerService answers questions grounded in retrieved context.
type AnswerService interface {
	// Ask retrieves topK chunks and generates an answer. Zero topK uses the default.
	// Generation failures are reported in the Answer, not as an error.
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// Profile returns the answering profile.
	Profile() domain.Profile
}

// ComplianceService evaluates compliance rules against policy documents.
type ComplianceService interface {
	// Check evaluates a single rule. Failures become an Error finding.
	Check(ctx context.Context, rule domain.Rule) domain.Finding

	// Audit evaluates all rules in order.
	Audit(ctx context.Context, rules []domain.Rule) (*domain.AuditReport, error)
}

// EvaluationService runs a query set through the AnswerService.
type EvaluationService interface {
	// Run answers every query, recording response and wall time.
	Run(ctx context.Context, queries []string) ([]domain.EvalResult, error)
}
