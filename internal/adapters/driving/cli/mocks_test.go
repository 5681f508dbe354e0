package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/report"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// mockRetrieval implements driving.RetrievalService.
type mockRetrieval struct {
	results []domain.QueryResult
	err     error
	info    domain.IndexInfo
	gotTopK int
}

func (m *mockRetrieval) Query(_ context.Context, _ string, topK int) ([]domain.QueryResult, error) {
	m.gotTopK = topK
	return m.results, m.err
}

func (m *mockRetrieval) Info() domain.IndexInfo {
	return m.info
}

// mockAnswers implements driving.AnswerService.
type mockAnswers struct {
	answer  *domain.Answer
	err     error
	gotTopK int
}

func (m *mockAnswers) Ask(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	a := *m.answer
	a.Question = question
	return &a, nil
}

func (m *mockAnswers) Profile() domain.Profile { return domain.ProfilePolicy }

// mockCompliance implements driving.ComplianceService.
type mockCompliance struct {
	report   *domain.AuditReport
	err      error
	gotRules []domain.Rule
}

func (m *mockCompliance) Check(_ context.Context, rule domain.Rule) domain.Finding {
	return domain.Finding{Rule: rule, Status: domain.StatusCompliant}
}

func (m *mockCompliance) Audit(_ context.Context, rules []domain.Rule) (*domain.AuditReport, error) {
	m.gotRules = rules
	return m.report, m.err
}

// mockEvaluation implements driving.EvaluationService.
type mockEvaluation struct {
	results    []domain.EvalResult
	err        error
	gotQueries []string
}

func (m *mockEvaluation) Run(_ context.Context, queries []string) ([]domain.EvalResult, error) {
	m.gotQueries = queries
	return m.results, m.err
}

// mockRules implements driven.RuleSource.
type mockRules struct {
	rules []domain.Rule
	err   error
}

func (m *mockRules) Rules() ([]domain.Rule, error) { return m.rules, m.err }
func (m *mockRules) Path() string                  { return "rules.json" }

func hit(source, text string, distance float64) domain.QueryResult {
	return domain.QueryResult{
		Metadata: domain.RecordMetadata{ChunkID: source + "-0", Source: source, Text: text},
		Distance: distance,
	}
}

func readyInfo() domain.IndexInfo {
	return domain.IndexInfo{
		State:          domain.IndexReady,
		Dir:            "index",
		Metric:         domain.MetricCosine,
		Dimensions:     384,
		Count:          12,
		EmbeddingModel: "all-minilm",
	}
}

// resetFlags restores every command flag to its default between tests.
func resetFlags() {
	verbose = false
	profileFlag = ""
	buildForce, buildCorpus = false, ""
	queryTopK, queryJSON = domain.DefaultTopK, false
	askTopK, askJSON = 0, false
	auditRules, auditOutput, auditJSON = "", report.DefaultAuditFile, false
	evalQueries, evalOutput = "", report.DefaultEvaluationFile
	infoJSON = false
	tuiTopK = 0
}

// setupTestRuntime installs a factory returning rt and records the options
// each command asked for.
func setupTestRuntime(t *testing.T, rt *Runtime) *[]RuntimeOptions {
	t.Helper()
	var calls []RuntimeOptions

	original := runtimeFactory
	resetFlags()
	runtimeFactory = func(_ context.Context, opts RuntimeOptions) (*Runtime, error) {
		calls = append(calls, opts)
		return rt, nil
	}
	t.Cleanup(func() {
		runtimeFactory = original
		resetFlags()
	})
	return &calls
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
