package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

// queryResult is the CLI-facing shape of one ranked candidate.
type queryResult struct {
	FileName      string  `json:"file_name"`
	ChunkIndex    int     `json:"chunk_index"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	HybridScore   float64 `json:"hybrid_score"`
	RerankScore   float64 `json:"rerank_score,omitempty"`
	Text          string  `json:"text"`
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Rank indexed chunks for a query",
	Long: `Rank document chunks against a query and print them with their
diagnostic scores, without generating an answer.

Examples:
  docqa query -q "budget report 2023"
  docqa query -q "quarterly revenue" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rankUC, err := newRankPipeline(st, log)
	if err != nil {
		return err
	}

	topK := GetConfig().Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	ranked, err := rankUC.Rank(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	results := make([]queryResult, 0, len(ranked.Candidates))
	for _, c := range ranked.Candidates {
		results = append(results, queryResult{
			FileName:      c.Chunk.Metadata.FileName,
			ChunkIndex:    c.Chunk.Metadata.ChunkIndex,
			SemanticScore: c.SemanticScore,
			KeywordScore:  c.KeywordScore,
			HybridScore:   c.HybridScore,
			RerankScore:   c.RerankScore,
			Text:          c.Chunk.Content,
		})
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No relevant documents found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s#%d (hybrid: %.3f, sem: %.3f, kw: %.3f", i+1,
			r.FileName, r.ChunkIndex, r.HybridScore, r.SemanticScore, r.KeywordScore)
		if ranked.Reranked {
			fmt.Printf(", rerank: %.3f", r.RerankScore)
		}
		fmt.Println(") ---")

		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
