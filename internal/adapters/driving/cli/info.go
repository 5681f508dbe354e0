package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the index state and embedding model",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	info := rt.Retrieval.Info()
	if infoJSON {
		return printJSON(cmd, info)
	}

	cmd.Println("[Index]")
	cmd.Printf("  State: %s\n", info.State)
	cmd.Printf("  Directory: %s\n", info.Dir)
	cmd.Printf("  Chunks: %d\n", info.Count)
	cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	cmd.Printf("  Metric: %s\n", info.Metric.Description())
	cmd.Printf("  Embedding model: %s\n", info.EmbeddingModel)
	if !info.BuiltAt.IsZero() {
		cmd.Printf("  Built: %s\n", info.BuiltAt.Local().Format(time.RFC1123))
	}
	return nil
}
