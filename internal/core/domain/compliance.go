package domain

import "strings"

// Rule is a compliance requirement evaluated against retrieved policy text.
type Rule struct {
	ID       string `json:"id" yaml:"id"`
	Category string `json:"category" yaml:"category"`
	Rule     string `json:"rule" yaml:"rule"`
	Severity string `json:"severity" yaml:"severity"`
}

// Validate checks that the rule can be evaluated.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Rule) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ComplianceStatus is the verdict for a single rule.
type ComplianceStatus string

// Compliance verdicts.
const (
	StatusCompliant    ComplianceStatus = "Compliant"
	StatusNonCompliant ComplianceStatus = "Non-Compliant"
	StatusMissing      ComplianceStatus = "Missing"
	StatusError        ComplianceStatus = "Error"
	StatusUnknown      ComplianceStatus = "Unknown"
)

// ParseComplianceStatus maps a model-produced status to a known verdict.
// Matching ignores case, spaces, underscores and hyphens.
func ParseComplianceStatus(s string) ComplianceStatus {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "compliant":
		return StatusCompliant
	case "noncompliant":
		return StatusNonCompliant
	case "missing", "notmentioned", "notfound":
		return StatusMissing
	case "error":
		return StatusError
	default:
		return StatusUnknown
	}
}

// String returns the string representation.
func (s ComplianceStatus) String() string {
	return string(s)
}

// Finding is the evaluated outcome of one rule.
type Finding struct {
	Rule        Rule             `json:"rule"`
	Status      ComplianceStatus `json:"status"`
	Evidence    string           `json:"evidence"`
	Remediation string           `json:"remediation"`
}

// AuditSummary aggregates findings by status.
type AuditSummary struct {
	Total        int     `json:"total"`
	Compliant    int     `json:"compliant"`
	NonCompliant int     `json:"non_compliant"`
	Missing      int     `json:"missing"`
	Errors       int     `json:"errors"`
	Unknown      int     `json:"unknown"`
	Rate         float64 `json:"compliance_rate"`
}

// Summarise counts findings per status. Rate is the compliant percentage of all rules.
func Summarise(findings []Finding) AuditSummary {
	s := AuditSummary{Total: len(findings)}
	for i := range findings {
		switch findings[i].Status {
		case StatusCompliant:
			s.Compliant++
		case StatusNonCompliant:
			s.NonCompliant++
		case StatusMissing:
			s.Missing++
		case StatusError:
			s.Errors++
		default:
			s.Unknown++
		}
	}
	if s.Total > 0 {
		s.Rate = float64(s.Compliant) / float64(s.Total) * 100
	}
	return s
}

// AuditReport is the result of running a rule set.
type AuditReport struct {
	ID       string       `json:"id"`
	Findings []Finding    `json:"findings"`
	Summary  AuditSummary `json:"summary"`
}
