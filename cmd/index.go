package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/gate"
	"github.com/synapticforge/crawlmesh/internal/indexer"
	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/internal/utils"
)

var indexRank string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run an indexer worker pool against the indexer queue",
	Long: `Run the indexer role: consume page payloads from the indexer queue,
clean and upsert them into the Page Store, and optionally notify an
external search engine of the update.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexRank, "rank", "", "this node's indexer rank, e.g. indexer-1 (required for fail-closed liveness)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := utils.InitLogger(debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.Sync()

	cfg := config.FromEnv()
	if indexRank != "" {
		cfg.Rank = indexRank
	}

	pages, err := buildQueue(cfg, cfg.IndexerQueueURL)
	if err != nil {
		return fmt.Errorf("build indexer queue: %w", err)
	}

	st, err := store.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}

	external := buildExternalIndexer(cfg)

	var g *gate.Gate
	if cfg.Rank != "" && !isPrimaryRank(cfg.Rank, cfg.IndexerRanks) {
		g = gate.New(cfg.MasterAPI, cfg.NodeID, rankPriorityOrder(cfg.IndexerRanks), cfg.HeartbeatTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	utils.Info("starting indexer worker pool",
		utils.NewField("node_id", cfg.NodeID),
		utils.NewField("rank", cfg.Rank),
		utils.NewField("workers", cfg.IndexerThreads))

	errs := make(chan error, cfg.IndexerThreads)
	workers := make([]*indexer.Worker, 0, cfg.IndexerThreads)
	for i := 0; i < cfg.IndexerThreads; i++ {
		workerID := fmt.Sprintf("%s-%d", cfg.NodeID, i)
		w := indexer.NewWorker(workerID, pages, st, external, g, cfg.PolitenessDelay, cfg.QueueWaitTimeout)
		workers = append(workers, w)
		go func() { errs <- w.Run(ctx) }()
	}

	go runHeartbeatLoop(ctx, cfg, "indexer", func() int64 {
		var total int64
		for _, w := range workers {
			total += w.URLCount()
		}
		return total
	})

	for i := 0; i < cfg.IndexerThreads; i++ {
		if err := <-errs; err != nil && err != context.Canceled {
			utils.Error("indexer worker exited with error", utils.NewField("error", err.Error()))
		}
	}
	return nil
}

// buildExternalIndexer returns a GoogleIndexer when service-account
// credentials are configured via GOOGLE_INDEXING_CREDENTIALS_JSON, or a
// NullIndexer otherwise (indexed_obj_id stays the fixed "dummy-id").
func buildExternalIndexer(cfg *config.Config) indexer.ExternalIndexer {
	credPath := os.Getenv("GOOGLE_INDEXING_CREDENTIALS_JSON")
	if credPath == "" {
		return indexer.NullIndexer{}
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		utils.Warn("failed reading external indexer credentials, falling back to null indexer",
			utils.NewField("path", credPath), utils.NewField("error", err.Error()))
		return indexer.NullIndexer{}
	}

	ext, err := indexer.NewGoogleIndexer(context.Background(), data)
	if err != nil {
		utils.Warn("failed building external indexer, falling back to null indexer", utils.NewField("error", err.Error()))
		return indexer.NullIndexer{}
	}
	return ext
}
