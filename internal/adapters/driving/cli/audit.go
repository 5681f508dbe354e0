package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/report"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

var (
	auditRules  string
	auditOutput string
	auditJSON   bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check compliance rules against the policy documents",
	Long: `Runs every rule in the rules file (JSON array or YAML list of
{id, category, rule, severity}) against the indexed policy documents and
writes a CSV report. Rules the model cannot assess are reported with
status Error; the audit always completes.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditRules, "rules", "r", "", "rules file (overrides settings)")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", report.DefaultAuditFile, "CSV report path")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "print the report as JSON instead of a summary")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, RuntimeOptions{RequireLLM: true, RulesPath: auditRules})
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.Rules == nil || rt.Compliance == nil {
		return errors.New("compliance audit not configured")
	}
	rules, err := rt.Rules.Rules()
	if err != nil {
		return fmt.Errorf("failed to read rules: %w", err)
	}

	rep, err := rt.Compliance.Audit(commandContext(cmd), rules)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if auditOutput != "" {
		if err := report.WriteFile(auditOutput, func(w io.Writer) error {
			return report.WriteAudit(w, rep)
		}); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if auditJSON {
		return printJSON(cmd, rep)
	}
	printAuditSummary(cmd, rep.Summary)
	if auditOutput != "" {
		cmd.Printf("Report written to %s\n", auditOutput)
	}
	return nil
}

func printAuditSummary(cmd *cobra.Command, s domain.AuditSummary) {
	cmd.Println("Compliance Summary")
	cmd.Println("==================")
	cmd.Printf("  Total rules:    %d\n", s.Total)
	cmd.Printf("  Compliant:      %d\n", s.Compliant)
	cmd.Printf("  Non-Compliant:  %d\n", s.NonCompliant)
	cmd.Printf("  Missing:        %d\n", s.Missing)
	if s.Errors > 0 {
		cmd.Printf("  Errors:         %d\n", s.Errors)
	}
	if s.Unknown > 0 {
		cmd.Printf("  Unknown:        %d\n", s.Unknown)
	}
	cmd.Printf("  Compliance rate: %.1f%%\n", s.Rate)
}
