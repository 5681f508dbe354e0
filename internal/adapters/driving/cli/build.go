package cli

import (
	"github.com/spf13/cobra"
)

var (
	buildForce  bool
	buildCorpus string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or load the vector index",
	Long: `Loads the corpus directory, chunks every document, embeds the chunks and
persists the index. If both index artifacts already exist they are loaded
instead; use --force to discard them and rebuild.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "discard existing artifacts and rebuild")
	buildCmd.Flags().StringVar(&buildCorpus, "corpus", "", "corpus directory (overrides settings)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, RuntimeOptions{Rebuild: buildForce, CorpusDir: buildCorpus})
	if err != nil {
		return err
	}
	defer rt.close()

	info := rt.Retrieval.Info()
	cmd.Printf("Index ready: %d chunks, %d dimensions, %s metric\n", info.Count, info.Dimensions, info.Metric)
	cmd.Printf("Artifacts: %s\n", info.Dir)
	return nil
}
