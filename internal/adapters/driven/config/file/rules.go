package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure RuleSource implements the interface.
var _ driven.RuleSource = (*RuleSource)(nil)

// RuleSource reads compliance rules from a JSON array or a YAML list.
// The format is chosen by extension; .yaml and .yml are YAML, anything else JSON.
type RuleSource struct {
	path string
}

// NewRuleSource creates a rule source for path.
func NewRuleSource(path string) *RuleSource {
	return &RuleSource{path: path}
}

// Path returns the rule file path.
func (s *RuleSource) Path() string {
	return s.path
}

// Rules reads and validates the rule file.
func (s *RuleSource) Rules() ([]domain.Rule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rules file %q: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rules []domain.Rule
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rules)
	default:
		err = json.Unmarshal(data, &rules)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse rules %q: %w", domain.ErrInvalidInput, s.path, err)
	}

	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d in %q: id and rule text are required: %w", i+1, s.path, err)
		}
	}
	return rules, nil
}
