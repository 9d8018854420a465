package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cherwin23/HR-Assistant/pkg/knowledge"
	"github.com/Cherwin23/HR-Assistant/pkg/llm"
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index handbook documents into the retrieval store",
	Long: `Index one or more handbook text files into the retrieval store.
Each file is chunked and embedded; the agent's handbook tool searches the
resulting index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	embedder := llm.NewOpenAIEmbedder(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
	store, err := knowledge.NewStore(knowledge.Config{
		DBPath:     cfg.Handbook.DBPath,
		Collection: cfg.Handbook.Collection,
		Embedder:   embedder,
		Logger:     log.GetZerolog(),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var total int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		chunks := knowledge.ChunkText(string(data))
		if len(chunks) == 0 {
			fmt.Printf("Skipping %s: no content\n", path)
			continue
		}

		if err := store.AddChunks(ctx, chunks); err != nil {
			return fmt.Errorf("failed to index %s: %w", path, err)
		}

		fmt.Printf("Indexed %s: %d chunks\n", path, len(chunks))
		total += len(chunks)
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Done. %d chunks added, %d total in collection %q\n", total, count, cfg.Handbook.Collection)
	return nil
}
