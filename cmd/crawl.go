package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/crawl"
	"github.com/jobsift/dice-crawler/internal/detail"
	"github.com/jobsift/dice-crawler/internal/listing"
	"github.com/jobsift/dice-crawler/internal/store"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Starts a crawl session",
		Long: `Walks the configured search from the start page, fetching detail pages
for every job id not already present in the store. Between pages the
session prompts for a navigation decision (next, previous, a page number,
or quit).`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	walker, err := listing.NewWalker(listing.Config{
		BaseSearchURL:     cfg.SearchURL(),
		UserAgent:         cfg.Crawler.UserAgent,
		PageSize:          cfg.Crawler.PageSize,
		RenderTimeout:     cfg.RenderTimeout(),
		SettleDelay:       cfg.SettleDelay(),
		DefaultTotalPages: cfg.Crawler.DefaultTotalPages,
	}, logger)
	if err != nil {
		return fmt.Errorf("init walker: %w", err)
	}
	defer func() {
		if cerr := walker.Close(ctx); cerr != nil {
			logger.Warn("Failed to close walker", zap.Error(cerr))
		}
	}()

	delayMin, delayMax := cfg.DelayRange()
	extractor := detail.NewExtractor(detail.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		HostQPS:   cfg.Crawler.HostQPS,
	}, crawl.NewRandomDelay(delayMin, delayMax), logger)

	orchestrator := crawl.New(
		walker,
		extractor,
		store.New(cfg.Store.Path, logger),
		crawl.NewStdinNavigator(os.Stdin, os.Stdout),
		crawl.Config{
			RunID:       uuid.NewString(),
			StartPage:   cfg.Crawler.StartPage,
			Concurrency: cfg.Crawler.Concurrency,
		},
		logger,
	)

	if err := orchestrator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	return nil
}
