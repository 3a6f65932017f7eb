package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"wayfarer/config"
	"wayfarer/internal/usecase"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vector index from the knowledge base",
	Long: `Read every destination guide in the knowledge base, split it into
fragments, embed them, and persist the resulting vector index. An
existing index is always rebuilt from scratch.

Examples:
  wayfarer build
  wayfarer build -d /path/to/project`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()
	indexPath := config.IndexPath(rootDir, cfg)

	// build always starts clean
	if err := os.Remove(indexPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove existing index: %w", err)
	}

	opts, err := retrievalOptions(cfg, rootDir, true)
	if err != nil {
		return err
	}

	fmt.Printf("Building index from %s...\n", config.KnowledgeBasePath(rootDir, cfg))

	r, err := usecase.NewRetrieval(opts)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("\nBuild complete:\n")
	fmt.Printf("  Fragments indexed: %d\n", r.FragmentCount())
	fmt.Printf("  Embedding model:   %s\n", cfg.Embedding.Model)
	fmt.Printf("\nIndex stored at: %s\n", indexPath)
	return nil
}
