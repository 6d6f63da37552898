package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/synapticforge/crawlmesh/internal/config"
	"github.com/synapticforge/crawlmesh/internal/refresher"
	"github.com/synapticforge/crawlmesh/internal/store"
	"github.com/synapticforge/crawlmesh/internal/utils"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the Keyword Index refresher loop",
	Long: `Watch the Page Store for changes and rebuild the Keyword Index from
scratch whenever a change is detected.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := utils.InitLogger(debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.Sync()

	cfg := config.FromEnv()

	st, err := store.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}

	r := refresher.New(st, cfg.RefreshInterval)

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		utils.Info("refresher received interrupt, shutting down")
		close(stop)
	}()

	utils.Info("starting index refresher", utils.NewField("interval", cfg.RefreshInterval.String()))
	r.Run(stop)
	return nil
}
