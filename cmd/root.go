// Package cmd defines the CLI commands for the dice-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/config"
	"github.com/jobsift/dice-crawler/internal/logging"
	"github.com/jobsift/dice-crawler/internal/metrics"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dice-crawler",
		Short: "A resumable job-listing scraper for Dice.com",
		Long: `dice-crawler walks paginated Dice search results to discover job ids,
fetches each job's detail page, and persists normalized records to a JSON
store after every new record, so interrupted runs resume without
reprocessing known jobs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// setup loads configuration and builds the process logger shared by the
// subcommands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	metrics.Init()
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dice-crawler: %v\n", err)
		os.Exit(1)
	}
}
