package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

var (
	queryDestination string
	querySection     string
	queryTopK        int
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a retrieval query against the knowledge index",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDestination, "destination", "", "destination hint (city or country)")
	queryCmd.Flags().StringVar(&querySection, "section", "", "section filter (attractions, restaurants, ...)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "n", 0, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	var section domain.Section
	if querySection != "" {
		parsed, ok := domain.ParseSection(querySection)
		if !ok {
			return fmt.Errorf("unknown section: %s", querySection)
		}
		section = parsed
	}

	results, err := app.Retriever.Retrieve(cmd.Context(), domain.RetrievalQuery{
		Query:       args[0],
		Destination: queryDestination,
		Section:     section,
		TopK:        queryTopK,
	})
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("[%d] %s (%s) [%s] score=%.3f ns=%s\n", i+1, r.DocumentTitle, r.Destination, r.Section, r.Score, r.Namespace)
		cmd.Println(indent(truncate(r.Text, 300), "    "))
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func indent(s, prefix string) string {
	out := prefix
	for _, r := range s {
		out += string(r)
		if r == '\n' {
			out += prefix
		}
	}
	return out
}
