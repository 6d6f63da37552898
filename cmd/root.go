package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

// rootCmd is the base command; crawlmesh always runs one of its
// subcommands (crawl, index, refresh, serve, gateway) as a long-running
// process, never a bare interactive mode.
var rootCmd = &cobra.Command{
	Use:     "crawlmesh",
	Short:   "A distributed web crawler and keyword search pipeline",
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
