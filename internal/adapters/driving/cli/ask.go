package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the most relevant chunks and asks the configured LLM to answer
using only that context. The prompt depends on the profile: clinical
questions for medical, company policy questions for policy.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks used as context (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, RuntimeOptions{RequireLLM: true})
	if err != nil {
		return err
	}
	defer rt.close()

	answer, err := rt.Answers.Ask(commandContext(cmd), args[0], askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		printSources(cmd, answer.Sources, rt.Retrieval.Info().Metric, false)
	}
	return nil
}
