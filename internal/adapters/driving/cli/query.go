package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// snippetLen is the number of runes of chunk text shown per result.
const snippetLen = 200

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Find the chunks most similar to a text",
	Long: `Embeds the text and returns the nearest chunks of the index, closest first,
with their source and similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to return")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

// queryResultJSON is the JSON shape of one query hit.
type queryResultJSON struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	results, err := rt.Retrieval.Query(commandContext(cmd), args[0], queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	metric := rt.Retrieval.Info().Metric

	if queryJSON {
		out := make([]queryResultJSON, len(results))
		for i := range results {
			out[i] = queryResultJSON{
				Text:       results[i].Text(),
				Source:     results[i].Source(),
				Distance:   results[i].Distance,
				Similarity: domain.Similarity(metric, results[i].Distance),
			}
		}
		return printJSON(cmd, out)
	}

	printSources(cmd, results, metric, true)
	return nil
}

// printSources prints numbered results with their similarity.
func printSources(cmd *cobra.Command, results []domain.QueryResult, metric domain.DistanceMetric, withText bool) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i := range results {
		cmd.Printf("  [%d] %s (similarity %.3f)\n", i+1, results[i].Source(), domain.Similarity(metric, results[i].Distance))
		if withText {
			cmd.Printf("      %s\n", snippet(results[i].Text(), snippetLen))
		}
	}
}

func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
