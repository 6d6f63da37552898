package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/crawler"
	"github.com/synapticforge/crawlmesh/internal/gate"
	"github.com/synapticforge/crawlmesh/internal/utils"
)

var crawlRank string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a crawler worker pool against the task queue",
	Long: `Run the crawler role: pull CrawlTasks from the shared task queue,
fetch each URL, extract text and links, emit a page payload for the
indexer, and enqueue every discovered link as a child task.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlRank, "rank", "", "this node's crawler rank, e.g. crawler-1 (required for fail-closed liveness)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if err := utils.InitLogger(debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.Sync()

	cfg := config.FromEnv()
	if crawlRank != "" {
		cfg.Rank = crawlRank
	}

	tasks, err := buildQueue(cfg, cfg.TaskQueueURL)
	if err != nil {
		return fmt.Errorf("build task queue: %w", err)
	}
	pages, err := buildQueue(cfg, cfg.IndexerQueueURL)
	if err != nil {
		return fmt.Errorf("build indexer queue: %w", err)
	}

	var g *gate.Gate
	if cfg.Rank != "" && !isPrimaryRank(cfg.Rank, cfg.CrawlerRanks) {
		g = gate.New(cfg.MasterAPI, cfg.NodeID, rankPriorityOrder(cfg.CrawlerRanks), cfg.HeartbeatTimeout)
	}

	fetcher := crawler.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	robots := crawler.NewRobotsChecker(fetcher, cfg.UserAgent, cfg.RespectRobots)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	utils.Info("starting crawler worker pool",
		utils.NewField("node_id", cfg.NodeID),
		utils.NewField("rank", cfg.Rank),
		utils.NewField("workers", cfg.CrawlerThreads))

	errs := make(chan error, cfg.CrawlerThreads)
	workers := make([]*crawler.Worker, 0, cfg.CrawlerThreads)
	for i := 0; i < cfg.CrawlerThreads; i++ {
		workerID := fmt.Sprintf("%s-%d", cfg.NodeID, i)
		w := crawler.NewWorker(workerID, tasks, pages, fetcher, robots, g, cfg.PolitenessDelay, cfg.QueueWaitTimeout)
		workers = append(workers, w)
		go func() { errs <- w.Run(ctx) }()
	}

	go runHeartbeatLoop(ctx, cfg, "crawler", func() int64 {
		var total int64
		for _, w := range workers {
			total += w.URLCount()
		}
		return total
	})

	for i := 0; i < cfg.CrawlerThreads; i++ {
		if err := <-errs; err != nil && err != context.Canceled {
			utils.Error("crawler worker exited with error", utils.NewField("error", err.Error()))
		}
	}
	return nil
}

// rankPriorityOrder returns a stable, deterministic priority order over a
// rank binding's keys (ranks are named "<role>-<n>", so lexicographic
// sort on the rank name recovers priority order).
func rankPriorityOrder(ranks config.RankBinding) []string {
	names := make([]string, 0, len(ranks))
	for name := range ranks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isPrimaryRank reports whether rank is R1, the highest-priority rank for
// its role. Spec: the primary runs unconditionally and never consults the
// Failover Gate, so callers skip gate construction entirely for it.
func isPrimaryRank(rank string, ranks config.RankBinding) bool {
	order := rankPriorityOrder(ranks)
	return len(order) > 0 && order[0] == rank
}
