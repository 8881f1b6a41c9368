// Package listing discovers job ids by rendering paginated search-results
// pages in headless Chrome and parsing the resulting DOM.
package listing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Result-card and pagination selectors on the rendered search page.
const (
	cardSelector       = "dhi-search-card"
	cardLinkSelector   = `a[data-cy="card-title-link"]`
	pageNumberSelector = `[data-cy="page-number-link"]`
)

// Config controls walker behavior.
type Config struct {
	BaseSearchURL     string
	UserAgent         string
	PageSize          int
	RenderTimeout     time.Duration
	SettleDelay       time.Duration
	DefaultTotalPages int
}

// Walker renders search-results pages using headless Chrome via chromedp.
type Walker struct {
	cfg             Config
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
}

// NewWalker starts a shared browser process. Each Discover call opens and
// closes its own tab, so the rendering session is scoped to one page.
func NewWalker(cfg Config, logger *zap.Logger) (*Walker, error) {
	if cfg.DefaultTotalPages <= 0 {
		cfg.DefaultTotalPages = 5
	}
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Walker{
		cfg:             cfg,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
	}, nil
}

// Close tears down the chromedp allocator and browser contexts.
func (w *Walker) Close(_ context.Context) error {
	if w == nil {
		return nil
	}
	w.browserCancel()
	w.allocatorCancel()
	return nil
}

// Discover renders one search-results page and returns the job ids found on
// it plus the total page count from the pagination controls. Discovery
// always degrades gracefully: a render timeout, navigation error, or page
// with no cards yields an empty id list and the default page count.
func (w *Walker) Discover(ctx context.Context, page int) ([]string, int) {
	pageURL, err := RewriteSearchURL(w.cfg.BaseSearchURL, page, w.cfg.PageSize)
	if err != nil {
		w.logger.Error("Bad search URL", zap.String("url", w.cfg.BaseSearchURL), zap.Error(err))
		return nil, w.cfg.DefaultTotalPages
	}

	w.logger.Info("Fetching search results", zap.String("url", pageURL), zap.Int("page", page))

	html, err := w.renderPage(ctx, pageURL)
	if err != nil {
		w.logger.Warn("Listing render failed, treating page as empty",
			zap.Int("page", page), zap.Error(err))
		return nil, w.cfg.DefaultTotalPages
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		w.logger.Warn("Listing parse failed, treating page as empty",
			zap.Int("page", page), zap.Error(err))
		return nil, w.cfg.DefaultTotalPages
	}

	ids := parseJobIDs(doc)
	total := parseTotalPages(doc, w.cfg.DefaultTotalPages)
	w.logger.Info("Discovered listing page",
		zap.Int("page", page), zap.Int("ids", len(ids)), zap.Int("total_pages", total))
	return ids, total
}

// renderPage navigates a fresh tab to pageURL and waits, bounded by the
// render timeout, for result cards to appear before snapshotting the DOM.
// The tab is released on every exit path.
func (w *Walker) renderPage(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(w.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, w.cfg.RenderTimeout+w.cfg.SettleDelay)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	var html string
	tasks := chromedp.Tasks{
		emulation.SetUserAgentOverride(w.cfg.UserAgent),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(w.cfg.SettleDelay),
		chromedp.WaitReady(cardSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// parseJobIDs pulls the canonical job id from each result card's title
// anchor. A card without an id is skipped, not fatal to the page.
func parseJobIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		id, ok := card.Find(cardLinkSelector).First().Attr("id")
		if !ok || id == "" {
			return
		}
		ids = append(ids, id)
	})
	return ids
}

// parseTotalPages reads the numeric pagination links and returns the largest
// page number, or fallback when the controls are absent or unparsable.
func parseTotalPages(doc *goquery.Document, fallback int) int {
	total := 0
	doc.Find(pageNumberSelector).Each(func(_ int, link *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(link.Text()))
		if err != nil {
			return
		}
		if n > total {
			total = n
		}
	})
	if total == 0 {
		return fallback
	}
	return total
}
