package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"booking-scraper/browser"
	"booking-scraper/models"
	"booking-scraper/utils"
)

var (
	// ErrCalendar is returned when the date picker cannot be opened.
	ErrCalendar = errors.New("booking: could not open calendar")
	// ErrDateSelect is returned when a requested date cannot be selected.
	ErrDateSelect = errors.New("booking: could not select date")
)

const filterPollInterval = 250 * time.Millisecond

// Searcher performs the one-time search bootstrap on the home page.
type Searcher struct {
	opts   Options
	logger *utils.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(opts Options, logger *utils.Logger) *Searcher {
	return &Searcher{opts: opts, logger: logger}
}

// Search opens the home page in page, fills in the search form, applies the
// property-type filter and leaves page on the filtered results.
func (s *Searcher) Search(ctx context.Context, page browser.Page, req *models.SearchRequest) error {
	t := s.opts.Timings

	home, err := HomeURL(s.opts.BaseURL, req.Currency)
	if err != nil {
		return err
	}
	s.logger.Info("[search] Opening %s", home)
	if err := s.withTimeout(ctx, t.Setup, func(c context.Context) error {
		return page.Navigate(c, home)
	}); err != nil {
		return err
	}

	s.dismissConsent(ctx, page)

	if err := s.withTimeout(ctx, t.Setup, func(c context.Context) error {
		return page.SetInput(c, searchInputSelector, req.Search)
	}); err != nil {
		return fmt.Errorf("type search %q: %w", req.Search, err)
	}
	if err := pause(ctx, t.InputPause); err != nil {
		return err
	}

	if !s.openCalendar(ctx, page) {
		return ErrCalendar
	}
	if err := pause(ctx, t.CalendarPause); err != nil {
		return err
	}

	if !s.selectDate(ctx, page, req.CheckIn) {
		return fmt.Errorf("%w: check-in %s", ErrDateSelect, req.CheckIn)
	}
	if !s.selectDate(ctx, page, req.CheckOut) {
		return fmt.Errorf("%w: check-out %s", ErrDateSelect, req.CheckOut)
	}
	if err := pause(ctx, t.CalendarPause); err != nil {
		return err
	}

	if err := s.waitAndClick(ctx, page, submitSelector, t.Setup); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}

	if err := s.applyFilter(ctx, page, req.PropertyType); err != nil {
		return err
	}

	if err := s.waitAndClick(ctx, page, resultLinkSelector, t.ResultsWait); err != nil {
		return fmt.Errorf("open first result: %w", err)
	}
	s.logger.Info("[search] Results ready")
	return nil
}

// HomeURL returns base with the selected_currency query parameter set.
func HomeURL(base, currency string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("selected_currency", currency)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Searcher) dismissConsent(ctx context.Context, page browser.Page) {
	if err := s.waitAndClick(ctx, page, consentSelector, s.opts.Timings.ConsentWait); err != nil {
		s.logger.Debug("[search] No consent banner: %v", err)
		return
	}
	_ = pause(ctx, s.opts.Timings.ConsentPause)
}

func (s *Searcher) openCalendar(ctx context.Context, page browser.Page) bool {
	t := s.opts.Timings
	for _, sel := range calendarButtonSelectors {
		if err := s.waitAndClick(ctx, page, sel, t.CalendarWait); err != nil {
			s.logger.Debug("[search] calendar button %s: %v", sel, err)
			continue
		}
		if s.calendarShown(ctx, page) {
			return true
		}
	}

	var clicked bool
	if err := s.withTimeout(ctx, t.Script, func(c context.Context) error {
		return page.Evaluate(c, clickStartDateButtonJS, &clicked)
	}); err != nil || !clicked {
		return false
	}
	return s.calendarShown(ctx, page)
}

func (s *Searcher) calendarShown(ctx context.Context, page browser.Page) bool {
	if pause(ctx, s.opts.Timings.ClickSettle) != nil {
		return false
	}
	return s.withTimeout(ctx, s.opts.Timings.CalendarWait, func(c context.Context) error {
		return page.WaitPresent(c, calendarSelector)
	}) == nil
}

// selectDate clicks the calendar cell for date, paging forward a month at a
// time when it is not rendered yet.
func (s *Searcher) selectDate(ctx context.Context, page browser.Page, date string) bool {
	t := s.opts.Timings
	cell := fmt.Sprintf("span[data-date=%s]", browser.JSString(date))

	for hop := 0; hop < s.opts.MaxCalendarHops; hop++ {
		err := s.withTimeout(ctx, t.Script, func(c context.Context) error {
			return page.ClickNth(c, cell, 0)
		})
		if err == nil {
			_ = pause(ctx, t.DatePause)
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		if s.waitAndClick(ctx, page, nextMonthSelector, t.SelectorWait) != nil &&
			s.withTimeout(ctx, t.Script, func(c context.Context) error {
				return page.ClickNth(c, altNextMonthSelector, 0)
			}) != nil {
			return false
		}
		if pause(ctx, t.MonthPause) != nil {
			return false
		}
	}
	return false
}

// applyFilter clicks the property-type filter labelled label, waiting for
// the filter panel to render.
func (s *Searcher) applyFilter(ctx context.Context, page browser.Page, label string) error {
	filterCtx, cancel := context.WithTimeout(ctx, s.opts.Timings.FilterWait)
	defer cancel()

	script := clickFilterJS(label)
	ticker := time.NewTicker(filterPollInterval)
	defer ticker.Stop()
	for {
		var clicked bool
		if err := page.Evaluate(filterCtx, script, &clicked); err == nil && clicked {
			s.logger.Info("[search] Applied filter %q", label)
			return nil
		}
		select {
		case <-filterCtx.Done():
			return fmt.Errorf("property type filter %q: %w", label, filterCtx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Searcher) waitAndClick(ctx context.Context, page browser.Page, selector string, timeout time.Duration) error {
	return s.withTimeout(ctx, timeout, func(c context.Context) error {
		if err := page.WaitPresent(c, selector); err != nil {
			return err
		}
		return page.ClickNth(c, selector, 0)
	})
}

func (s *Searcher) withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	c, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(c)
}
