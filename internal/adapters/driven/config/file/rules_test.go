package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRuleSource_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "compliance_rules.json", `[
  {"id": "R001", "category": "Security", "rule": "Passwords must be changed every 90 days", "severity": "High"},
  {"id": "R002", "category": "Privacy", "rule": "Personal data must be encrypted at rest", "severity": "Critical"}
]`)

	rules, err := NewRuleSource(path).Rules()

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, domain.Rule{
		ID:       "R001",
		Category: "Security",
		Rule:     "Passwords must be changed every 90 days",
		Severity: "High",
	}, rules[0])
	assert.Equal(t, "R002", rules[1].ID)
}

func TestRuleSource_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", `
- id: R010
  category: Devices
  rule: Personal devices require MDM enrolment
  severity: Medium
`)

	rules, err := NewRuleSource(path).Rules()

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Devices", rules[0].Category)
	assert.Equal(t, "Medium", rules[0].Severity)
}

func TestRuleSource_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "absent.json"), domain.ErrNotFound},
		{"malformed json", writeFile(t, dir, "bad.json", `{"id": `), domain.ErrInvalidInput},
		{"rule without id", writeFile(t, dir, "noid.json", `[{"rule": "x"}]`), domain.ErrInvalidInput},
		{"malformed yaml", writeFile(t, dir, "bad.yml", "- id: [unclosed"), domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleSource(tt.path).Rules()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRuleSource_Path(t *testing.T) {
	assert.Equal(t, "rules.json", NewRuleSource("rules.json").Path())
}
