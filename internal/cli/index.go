package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/config"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/fs"
	"docqa/internal/adapter/store"
	"docqa/internal/usecase"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the documents directory",
	Long: `Index every matching document under the configured docs directory.
Files already indexed (by content hash) are skipped unless --force is given.

Examples:
  docqa index
  docqa index --force`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "clear the index and reindex everything")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	if err := config.EnsureStateDir(GetRootDir()); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	st, err := store.NewBoltStore(config.StoreDBPath(GetRootDir()), cfg.Embedding.Dimension)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	embedder, err := newEmbedder()
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	walker := fs.NewWalker(cfg.Docs.Includes, cfg.Docs.Excludes)
	chk := chunker.NewTextChunker(cfg.Docs.ChunkSize, cfg.Docs.ChunkOverlap)
	indexUC := usecase.NewIndexUseCase(st, walker, chk, embedder, log)

	fmt.Printf("Scanning %s...\n", cfg.Docs.Dir)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var initialized bool

	progress := func(processed, total int, message string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(processed)
		bar.Describe(fmt.Sprintf("[cyan]Indexing[reset] %s", message))
	}

	result, err := indexUC.Index(cmd.Context(), cfg.Docs.Dir, indexForce, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexed %d files (%d chunks), skipped %d already-indexed files\n",
		result.FilesIndexed, result.ChunksCreated, result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Printf("%d files had errors:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}
