package booking

import (
	"context"
	"fmt"

	"booking-scraper/browser"
	"booking-scraper/models"
	"booking-scraper/utils"
)

// ListingScraper scrapes one listing page per call, each in its own
// browser session.
type ListingScraper struct {
	sessions browser.SessionFactory
	opts     Options
	logger   *utils.Logger
}

// NewListingScraper creates a ListingScraper opening sessions from sessions.
func NewListingScraper(sessions browser.SessionFactory, opts Options, logger *utils.Logger) *ListingScraper {
	return &ListingScraper{sessions: sessions, opts: opts, logger: logger}
}

// Scrape loads url in a fresh session and extracts every field. Only a
// failure to open the session or load the page is returned as an error;
// missing fields are left nil. The session is released on every path.
func (s *ListingScraper) Scrape(ctx context.Context, url string, fastImages bool) (*models.HotelRecord, error) {
	page, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.logger.Warn("[listing] release session for %s: %v", url, cerr)
		}
	}()

	if err := s.load(ctx, page, url); err != nil {
		return nil, err
	}

	ex := NewExtractor(page, s.opts, s.logger)
	rec := &models.HotelRecord{URL: url}

	if v, ok := ex.FirstText(ctx, nameSelectors); ok {
		rec.HotelName = models.Optional(v)
	}
	if v, ok := ex.Address(ctx); ok {
		rec.Address = models.Optional(v)
	}
	if v, ok := ex.FirstText(ctx, descriptionSelectors); ok {
		rec.Description = models.Optional(v)
	}

	score, total := ex.ReviewInfo(ctx)
	rec.ReviewScore = models.Optional(score)
	rec.TotalReviews = models.Optional(total)

	if v, ok := ex.TimeFor(ctx, "Check-in"); ok {
		rec.CheckIn = models.Optional(v)
	}
	if v, ok := ex.TimeFor(ctx, "Check-out"); ok {
		rec.CheckOut = models.Optional(v)
	}

	rec.ImageURLs = ex.Images(ctx, fastImages)

	s.logger.Debug("[listing] %s: name=%q images=%d", url, models.Value(rec.HotelName), len(rec.ImageURLs))
	return rec, nil
}

func (s *ListingScraper) load(ctx context.Context, page browser.Page, url string) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.opts.Timings.PageLoad)
	defer cancel()

	if err := page.Navigate(loadCtx, url); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	if err := page.WaitReady(loadCtx); err != nil {
		return fmt.Errorf("wait for %s: %w", url, err)
	}
	return nil
}
