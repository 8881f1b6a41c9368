// Package crawl drives the resumable crawl session: listing discovery,
// detail fetching, incremental persistence, and page navigation.
package crawl

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jobsift/dice-crawler/internal/jobs"
	"github.com/jobsift/dice-crawler/internal/metrics"
	"github.com/jobsift/dice-crawler/internal/store"
)

// Config controls an orchestrated crawl session.
type Config struct {
	RunID       string
	StartPage   int
	Concurrency int
}

// Orchestrator composes the walker, extractor, and store. It owns the
// in-memory record collection and seen-id set exclusively: detail fetches
// may run concurrently, but every store mutation happens on the
// orchestrator's goroutine so each new record is appended and persisted
// before the next one is applied.
type Orchestrator struct {
	lister    jobs.Lister
	extractor jobs.Extractor
	records   jobs.RecordStore
	navigator jobs.Navigator
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Orchestrator.
func New(
	lister jobs.Lister,
	extractor jobs.Extractor,
	records jobs.RecordStore,
	navigator jobs.Navigator,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.StartPage <= 0 {
		cfg.StartPage = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Orchestrator{
		lister:    lister,
		extractor: extractor,
		records:   records,
		navigator: navigator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the crawl until the last page is processed, the navigator
// quits, or ctx is canceled. Interruption loses at most the in-flight
// fetches: the store is persisted after every new record, and re-running
// against the same store never reprocesses known ids.
func (o *Orchestrator) Run(ctx context.Context) error {
	all := o.records.Load()
	seen := store.SeenIDs(all)
	o.logger.Info("Loaded existing records",
		zap.String("run_id", o.cfg.RunID), zap.Int("records", len(all)))

	current := o.cfg.StartPage
	for {
		if err := ctx.Err(); err != nil {
			break
		}

		ids, total := o.lister.Discover(ctx, current)
		o.logger.Info("Processing page",
			zap.Int("page", current), zap.Int("of", total), zap.Int("found", len(ids)))
		metrics.ObservePage()

		newCount := 0
		var applyErr error
		for result := range o.fetchUnseen(ctx, ids, seen) {
			if applyErr != nil {
				// Keep draining so the fetch workers can exit.
				continue
			}
			if result.err != nil {
				o.logger.Warn("Detail fetch failed, id stays eligible",
					zap.String("job_id", result.id), zap.Error(result.err))
				metrics.ObserveFetch("failure")
				continue
			}
			if store.ContainsID(seen, result.id) {
				o.logger.Debug("Dropping duplicate fetch result", zap.String("job_id", result.id))
				metrics.ObserveFetch("skipped")
				continue
			}
			all = store.Add(all, result.record)
			seen[result.id] = struct{}{}
			if err := o.records.Save(all); err != nil {
				applyErr = fmt.Errorf("persist store: %w", err)
				continue
			}
			newCount++
			metrics.ObserveFetch("success")
			metrics.SetStoreSize(len(all))
			o.logger.Info("Scraped job",
				zap.String("job_id", result.id),
				zap.String("title", result.record.BasicInfo.Title))
		}
		if applyErr != nil {
			return applyErr
		}
		o.logger.Info("Page complete",
			zap.Int("page", current), zap.Int("new", newCount), zap.Int("total_records", len(all)))

		if current >= total {
			o.logger.Info("Reached last page", zap.Int("page", current))
			break
		}

		next, quit := o.awaitNavigation(ctx, current, total)
		if quit {
			break
		}
		current = next
	}

	// Final save is idempotent when nothing changed since the last write.
	if err := o.records.Save(all); err != nil {
		return fmt.Errorf("final store save: %w", err)
	}
	o.logger.Info("Crawl finished",
		zap.String("run_id", o.cfg.RunID), zap.Int("total_records", len(all)))
	return nil
}

type fetchResult struct {
	id     string
	record jobs.JobRecord
	err    error
}

// fetchUnseen fetches every id not already in the store. With Concurrency 1
// the fetches run strictly sequentially in page order; above 1 a bounded
// worker pool fetches them concurrently. Results arrive on the returned
// channel in completion order and are applied by the caller alone.
// A listing page can repeat an id (the same job placed more than once), so
// ids are also deduplicated within the page before any fetch is queued.
func (o *Orchestrator) fetchUnseen(ctx context.Context, ids []string, seen map[string]struct{}) <-chan fetchResult {
	pending := make([]string, 0, len(ids))
	queued := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if store.ContainsID(seen, id) || store.ContainsID(queued, id) {
			o.logger.Debug("Skipping already scraped job", zap.String("job_id", id))
			metrics.ObserveFetch("skipped")
			continue
		}
		queued[id] = struct{}{}
		pending = append(pending, id)
	}

	results := make(chan fetchResult)
	workers := o.cfg.Concurrency
	if workers > len(pending) {
		workers = len(pending)
	}
	if workers == 0 {
		close(results)
		return results
	}

	idCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idCh {
				record, err := o.extractor.Fetch(ctx, id)
				results <- fetchResult{id: id, record: record, err: err}
			}
		}()
	}

	go func() {
		defer close(idCh)
		for _, id := range pending {
			select {
			case idCh <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// awaitNavigation requests decisions until one is valid for the current
// position. Out-of-range decisions are rejected and re-requested without
// changing state; a navigator error is treated as quit.
func (o *Orchestrator) awaitNavigation(ctx context.Context, current, total int) (int, bool) {
	for {
		if ctx.Err() != nil {
			return 0, true
		}
		decision, err := o.navigator.Decide(ctx, current, total)
		if err != nil {
			o.logger.Warn("Navigation input unavailable, stopping", zap.Error(err))
			return 0, true
		}
		switch decision.Action {
		case jobs.ActionQuit:
			return 0, true
		case jobs.ActionNext:
			if current < total {
				return current + 1, false
			}
		case jobs.ActionPrev:
			if current > 1 {
				return current - 1, false
			}
		case jobs.ActionGoto:
			if decision.Page >= 1 && decision.Page <= total {
				return decision.Page, false
			}
		}
		o.logger.Warn("Rejecting navigation decision",
			zap.Int("action", int(decision.Action)), zap.Int("page", decision.Page),
			zap.Int("current", current), zap.Int("total", total))
	}
}
