package memory

import (
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure RuleSource implements the interface.
var _ driven.RuleSource = (*RuleSource)(nil)

// RuleSource serves a fixed rule set.
type RuleSource struct {
	rules []domain.Rule
}

// NewRuleSource creates a rule source over rules.
func NewRuleSource(rules ...domain.Rule) *RuleSource {
	return &RuleSource{rules: rules}
}

// Rules returns a copy of the rule set.
func (s *RuleSource) Rules() ([]domain.Rule, error) {
	return append([]domain.Rule(nil), s.rules...), nil
}

// Path returns a placeholder path.
func (s *RuleSource) Path() string {
	return ":memory:"
}
