package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"booking-scraper/browser"
	"booking-scraper/models"
	"booking-scraper/utils"
)

// ErrNoResults is returned when the results page shows no result cards.
var ErrNoResults = errors.New("booking: no result cards")

// SearchRunner drives a session from the home page to a results page.
type SearchRunner interface {
	Search(ctx context.Context, page browser.Page, req *models.SearchRequest) error
}

// Driver runs the search, collects listing URLs and fans them out to
// listing scrapers.
type Driver struct {
	sessions browser.SessionFactory
	searcher SearchRunner
	listings *ListingScraper
	retry    *utils.RetryConfig
	opts     Options
	logger   *utils.Logger
}

// NewDriver creates a Driver using the booking search bootstrap.
func NewDriver(sessions browser.SessionFactory, opts Options, logger *utils.Logger) *Driver {
	return &Driver{
		sessions: sessions,
		searcher: NewSearcher(opts, logger),
		listings: NewListingScraper(sessions, opts, logger),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		opts:   opts,
		logger: logger,
	}
}

// WithSearcher replaces the search bootstrap.
func (d *Driver) WithSearcher(s SearchRunner) *Driver {
	d.searcher = s
	return d
}

// Run executes the whole pipeline for req. An error means the run was
// aborted before any listing was scraped; listing failures are reported in
// the ResultSet instead.
func (d *Driver) Run(ctx context.Context, req *models.SearchRequest) (*models.ResultSet, error) {
	d.logger.Info("[driver] Searching %q, %s to %s, type %q, up to %d listings",
		req.Search, req.CheckIn, req.CheckOut, req.PropertyType, req.MaxItems)

	urls, err := d.collect(ctx, req)
	if err != nil {
		return nil, err
	}
	d.logger.Info("[driver] Total collected: %d URLs", len(urls))

	return d.Dispatch(ctx, urls, req.FastImages), nil
}

func (d *Driver) collect(ctx context.Context, req *models.SearchRequest) ([]string, error) {
	page, err := d.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open search session: %w", err)
	}
	defer page.Close()

	if err := d.searcher.Search(ctx, page, req); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return d.CollectLinks(ctx, page, req.MaxItems)
}

// CollectLinks gathers up to max unique result-card links from the results
// page shown in page, scrolling to render more cards. It gives up after
// MaxIdleScrolls consecutive rounds that add nothing.
func (d *Driver) CollectLinks(ctx context.Context, page browser.Page, max int) ([]string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d.opts.Timings.ResultsWait)
	err := page.WaitPresent(waitCtx, resultLinkSelector)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}

	links := utils.NewLinkSet(max)
	idle := 0
	for !links.Full() {
		var hrefs []string
		if err := d.evaluate(ctx, page, resultLinksJS, &hrefs); err != nil {
			if links.Size() > 0 {
				d.logger.Warn("[driver] Reading result links failed, keeping %d: %v", links.Size(), err)
				break
			}
			return nil, fmt.Errorf("read result links: %w", err)
		}

		added := 0
		for _, h := range hrefs {
			if links.Add(h) {
				added++
			}
			if links.Full() {
				break
			}
		}
		d.logger.Debug("[driver] %d new links (%d/%d)", added, links.Size(), max)
		if links.Full() {
			break
		}

		if added == 0 {
			idle++
		} else {
			idle = 0
		}
		if idle >= d.opts.MaxIdleScrolls {
			d.logger.Warn("[driver] No new results after %d scrolls, stopping at %d/%d",
				idle, links.Size(), max)
			break
		}

		if err := d.evaluate(ctx, page, scrollToBottomJS, nil); err != nil {
			d.logger.Debug("[driver] scroll: %v", err)
		}
		if err := pause(ctx, d.opts.Timings.ResultsScrollPause); err != nil {
			return links.Items(), err
		}
	}
	return links.Items(), nil
}

type listingOutcome struct {
	url    string
	record *models.HotelRecord
	err    error
}

// Dispatch scrapes urls on a fixed-size worker pool. Records are appended
// in completion order; failed listings are logged and listed in Failures.
func (d *Driver) Dispatch(ctx context.Context, urls []string, fastImages bool) *models.ResultSet {
	rs := &models.ResultSet{
		RunID:    uuid.NewString(),
		URLs:     urls,
		Records:  make([]*models.HotelRecord, 0, len(urls)),
		Failures: make([]models.ScrapeFailure, 0),
	}

	pool := utils.NewWorkerPool(d.opts.Workers, d.opts.RateLimitMs)
	outcomes := make(chan listingOutcome, len(urls))

	go func() {
		for _, u := range urls {
			url := u
			pool.Submit(ctx, func() {
				var rec *models.HotelRecord
				err := d.retry.Do(ctx, "scrape "+url, func() error {
					var err error
					rec, err = d.listings.Scrape(ctx, url, fastImages)
					return err
				})
				outcomes <- listingOutcome{url: url, record: rec, err: err}
			})
		}
		if err := pool.Wait(); err != nil {
			d.logger.Warn("[driver] Dispatch interrupted: %v", err)
		}
		close(outcomes)
	}()

	finished := make(map[string]struct{}, len(urls))
	for o := range outcomes {
		finished[o.url] = struct{}{}
		if o.err != nil {
			d.logger.Error("[driver] ERROR scraping %s: %v", o.url, o.err)
			rs.Failures = append(rs.Failures, models.ScrapeFailure{URL: o.url, Error: o.err.Error()})
			continue
		}
		rs.Records = append(rs.Records, o.record)
		name := models.Value(o.record.HotelName)
		if name == "" {
			name = o.url
		}
		d.logger.Info("[driver] Scraped hotel #%d: %s", len(rs.Records), name)
	}

	for _, u := range urls {
		if _, ok := finished[u]; !ok {
			rs.Failures = append(rs.Failures, models.ScrapeFailure{URL: u, Error: "not started: " + errString(ctx.Err())})
		}
	}

	d.logger.Info("[driver] Dispatch done: %d scraped, %d failed", len(rs.Records), len(rs.Failures))
	return rs
}

func (d *Driver) evaluate(ctx context.Context, page browser.Page, script string, res any) error {
	evalCtx, cancel := context.WithTimeout(ctx, d.opts.Timings.Script)
	defer cancel()
	return page.Evaluate(evalCtx, script, res)
}

func errString(err error) string {
	if err == nil {
		return "skipped"
	}
	return err.Error()
}
