// Package detail fetches job detail pages over plain HTTP and parses their
// semi-structured markup into normalized records. Extraction is best-effort:
// each field group is attempted independently and a missing or malformed
// element degrades that group to empty values without aborting the record.
package detail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobsift/dice-crawler/internal/jobs"
)

// Config controls extractor behavior.
type Config struct {
	BaseDetailURL string
	UserAgent     string
	Timeout       time.Duration
	HostQPS       float64
}

// Extractor fetches and parses one detail page per job id.
type Extractor struct {
	cfg           Config
	delay         jobs.DelayPolicy
	limiter       *rate.Limiter
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewExtractor builds an Extractor. The delay policy runs before every
// request; a HostQPS above zero additionally caps the request rate.
func NewExtractor(cfg Config, delay jobs.DelayPolicy, logger *zap.Logger) *Extractor {
	if cfg.BaseDetailURL == "" {
		cfg.BaseDetailURL = "https://www.dice.com/job-detail"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.HostQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HostQPS), 1)
	}
	return &Extractor{
		cfg:           cfg,
		delay:         delay,
		limiter:       limiter,
		baseCollector: colly.NewCollector(colly.Async(false)),
		logger:        logger,
	}
}

// Fetch retrieves the detail page for jobID and assembles a record. A
// non-success status or network error yields a *jobs.FetchError; the id then
// stays unscraped and eligible for a future run.
func (e *Extractor) Fetch(ctx context.Context, jobID string) (jobs.JobRecord, error) {
	if e.delay != nil {
		e.delay.Wait(ctx)
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return jobs.JobRecord{}, &jobs.FetchError{JobID: jobID, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return jobs.JobRecord{}, &jobs.FetchError{JobID: jobID, Err: err}
	}

	detailURL := fmt.Sprintf("%s/%s", e.cfg.BaseDetailURL, jobID)
	e.logger.Debug("Fetching job details", zap.String("url", detailURL))

	body, err := e.get(ctx, jobID, detailURL)
	if err != nil {
		return jobs.JobRecord{}, err
	}

	record := jobs.NewJobRecord(jobID)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// Unparsable markup degrades to an empty record, not a failure.
		e.logger.Warn("Detail markup unparsable", zap.String("job_id", jobID), zap.Error(err))
		return record, nil
	}

	record.BasicInfo = parseBasicInfo(doc)
	record.Overview = parseOverview(doc)
	record.Skills = parseSkills(doc)
	record.JobDetails = parseJobDetails(doc)
	record.Metadata = parseMetadata(doc)
	return record, nil
}

// get executes a single HTTP GET using a cloned Colly collector.
func (e *Extractor) get(ctx context.Context, jobID, detailURL string) ([]byte, error) {
	collector := e.baseCollector.Clone()
	if e.cfg.UserAgent != "" {
		collector.UserAgent = e.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(e.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &jobs.FetchError{JobID: jobID, StatusCode: status, Err: err}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(detailURL)
	}()

	select {
	case <-ctx.Done():
		return nil, &jobs.FetchError{JobID: jobID, Err: ctx.Err()}
	case err := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, &jobs.FetchError{JobID: jobID, Err: err}
		}
		return body, nil
	}
}
