package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/report"
)

var (
	evalQueries string
	evalOutput  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Answer a batch of questions and record response times",
	Long: `Runs each question through 'ask' and writes query, response and time
taken to a CSV file. Without --queries the built-in clinical question set
is used. Failed questions are recorded as "ERROR: ..." and the run goes on.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalQueries, "queries", "q", "", "file with one question per line")
	evaluateCmd.Flags().StringVarP(&evalOutput, "output", "o", report.DefaultEvaluationFile, "CSV output path")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	var queries []string
	if evalQueries != "" {
		var err error
		if queries, err = readQueries(evalQueries); err != nil {
			return err
		}
	}

	rt, err := openRuntime(cmd, RuntimeOptions{RequireLLM: true})
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.Evaluation == nil {
		return errors.New("evaluation not configured")
	}

	results, err := rt.Evaluation.Run(commandContext(cmd), queries)
	if err != nil {
		return fmt.Errorf("evaluation stopped after %d queries: %w", len(results), err)
	}

	if err := report.WriteFile(evalOutput, func(w io.Writer) error {
		return report.WriteEvaluation(w, results)
	}); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	var total time.Duration
	failed := 0
	for i := range results {
		total += results[i].Duration
		if strings.HasPrefix(results[i].Response, "ERROR: ") {
			failed++
		}
	}
	cmd.Printf("Evaluated %d queries (%d failed)\n", len(results), failed)
	if answered := len(results) - failed; answered > 0 {
		cmd.Printf("Average response time: %.2fs\n", total.Seconds()/float64(answered))
	}
	cmd.Printf("Results written to %s\n", evalOutput)
	return nil
}

// readQueries reads one question per line, skipping blanks and # comments.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queries: %w", err)
	}
	defer func() { _ = f.Close() }()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}
	return queries, nil
}
