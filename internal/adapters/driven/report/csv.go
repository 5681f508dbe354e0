// Package report writes audit and evaluation results as CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// Default report file names.
const (
	DefaultAuditFile      = "compliance_report.csv"
	DefaultEvaluationFile = "evaluation_results.csv"
)

var (
	auditHeader      = []string{"Rule ID", "Category", "Rule", "Severity", "Status", "Evidence", "Remediation"}
	evaluationHeader = []string{"query", "response", "time_taken"}
)

// WriteAudit writes one row per finding, in rule order.
func WriteAudit(w io.Writer, report *domain.AuditReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range report.Findings {
		f := &report.Findings[i]
		row := []string{f.Rule.ID, f.Rule.Category, f.Rule.Rule, f.Rule.Severity, f.Status.String(), f.Evidence, f.Remediation}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write rule %s: %w", f.Rule.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEvaluation writes one row per query. time_taken is in seconds.
func WriteEvaluation(w io.Writer, results []domain.EvalResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(evaluationHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		secs := strconv.FormatFloat(r.Duration.Seconds(), 'f', -1, 64)
		if err := cw.Write([]string{r.Query, r.Response, secs}); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and fills it with write. The file is replaced atomically.
func WriteFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
