package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/llm"
	"docqa/internal/usecase"
)

var (
	askQuestion string
	askTopK     int
	askJSON     bool
	askNoSource bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question against the indexed documents",
	Long: `Retrieve the most relevant chunks for a question and generate a
grounded answer with source citations.

Examples:
  docqa ask -q "What was the 2023 budget?"
  docqa ask -q "Who signed the contract?" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to ground on (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().BoolVar(&askNoSource, "no-sources", false, "omit sources from the output")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
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

	chat, err := llm.NewOpenAIChat(cfg.Chat.APIKeyEnv, cfg.Chat.Model, cfg.Chat.BaseURL,
		cfg.Chat.Temperature, cfg.Chat.MaxTokens)
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	topK := cfg.Retrieve.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	answerUC := usecase.NewAnswerUseCase(rankUC, chat, topK, log)

	answer, err := answerUC.Answer(cmd.Context(), askQuestion)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		if askNoSource {
			answer.Sources = nil
		}
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Text)

	if !askNoSource && len(answer.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for _, s := range answer.Sources {
			fmt.Printf("  - %s (chunk %d)\n", s.FileName, s.ChunkIndex)
		}
	}

	return nil
}
