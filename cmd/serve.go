package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/synapticforge/crawlmesh/internal/api"
	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/heartbeat"
	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/internal/utils"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Control Service",
	Long: `Start the Control Service: accepts crawl submissions, answers search
queries, ingests worker heartbeats, and exposes the per-rank liveness
endpoints the Failover Gate polls.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (defaults to config's control service port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := utils.InitLogger(debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.Sync()

	cfg := config.FromEnv()
	port := cfg.ControlServicePort
	if servePort != 0 {
		port = servePort
	}

	st, err := store.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}

	taskQueue, err := buildQueue(cfg, cfg.TaskQueueURL)
	if err != nil {
		return fmt.Errorf("build task queue: %w", err)
	}

	server := api.NewServer(api.Deps{
		Store:           st,
		Sidecar:         heartbeat.NewSidecar(),
		TaskQueue:       taskQueue,
		Logger:          utils.Logger,
		CrawlerRanks:    cfg.CrawlerRanks,
		IndexerRanks:    cfg.IndexerRanks,
		CrawlerLiveness: cfg.CrawlerLivenessThreshold,
		IndexerLiveness: cfg.IndexerLivenessThreshold,
		StaleThreshold:  cfg.StaleHeartbeatThreshold,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Info("starting control service", utils.NewField("port", port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Error("control service failed", utils.NewField("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.Info("shutting down control service")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
