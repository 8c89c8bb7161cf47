package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats()
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		fmt.Printf("Indexed files:  %d\n", stats.TotalFiles)
		fmt.Printf("Indexed chunks: %d\n", stats.TotalChunks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
