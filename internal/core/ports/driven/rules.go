package driven

import "github.com/custodia-labs/ragkit/internal/core/domain"

// RuleSource provides compliance rules for an audit.
type RuleSource interface {
	// Rules returns the rule set in file order.
	Rules() ([]domain.Rule, error)

	// Path returns where the rules are read from.
	Path() string
}
