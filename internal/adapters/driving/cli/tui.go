package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/tui"
)

var tuiTopK int

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for ragkit.

The TUI retrieves chunks as you type queries and, when an LLM is
configured, answers questions with their supporting sources.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Submit / Open chunk
  Tab      - Switch between query and ask
  Esc      - Back
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", 0, "chunks to retrieve per query (default: configured value)")
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp builds the TUI over the runtime's services.
func newTUIApp(cmd *cobra.Command, rt *Runtime) (*tui.App, error) {
	app, err := tui.NewApp(tui.NewPorts(rt.Retrieval, rt.Answers))
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app.WithContext(commandContext(cmd)).WithTopK(tuiTopK), nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, err := openRuntime(cmd, RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	app, err := newTUIApp(cmd, rt)
	if err != nil {
		return err
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
