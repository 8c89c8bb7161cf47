package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docqa/config"
	"docqa/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document QA - index documents and answer questions against them",
	Long: `docqa indexes a directory of documents and answers natural-language
questions against them. Retrieval combines semantic vector similarity with
lexical keyword scoring, optionally reranked by a cross-encoder.

Example usage:
  docqa index                          # Index the configured docs directory
  docqa query -q "budget report 2023"  # Rank chunks for a query
  docqa ask -q "what was the budget?"  # Generate a grounded answer`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Credentials live in the environment; .env is a convenience.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *zap.Logger {
	return logger
}
