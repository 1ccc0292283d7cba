package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"booking-scraper/browser"
)

func TestHomeURL(t *testing.T) {
	tests := []struct {
		base     string
		currency string
		want     string
	}{
		{"https://www.booking.com/", "EUR", "https://www.booking.com/?selected_currency=EUR"},
		{"https://www.booking.com/index.html?lang=en-gb", "USD", "https://www.booking.com/index.html?lang=en-gb&selected_currency=USD"},
		{"https://www.booking.com/?selected_currency=GBP", "BDT", "https://www.booking.com/?selected_currency=BDT"},
	}
	for _, tt := range tests {
		got, err := HomeURL(tt.base, tt.currency)
		if err != nil {
			t.Errorf("HomeURL(%q): %v", tt.base, err)
			continue
		}
		if got != tt.want {
			t.Errorf("HomeURL(%q, %q) = %q, want %q", tt.base, tt.currency, got, tt.want)
		}
	}

	if _, err := HomeURL("://bad", "EUR"); err == nil {
		t.Error("expected error for malformed base url")
	}
}

// searchPage answers the search bootstrap. Date cells for checkOut only
// render after monthsAhead clicks on the next-month button.
func searchPage(checkIn, checkOut string, monthsAhead int) *fakePage {
	page := newFakePage("<html></html>")
	for _, sel := range []string{consentSelector, calendarButtonSelectors[0], calendarSelector,
		nextMonthSelector, submitSelector, resultLinkSelector} {
		page.present[sel] = true
	}

	var mu sync.Mutex
	month := 0
	page.onClick = func(selector string, n int) error {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case selector == nextMonthSelector:
			month++
		case strings.Contains(selector, checkIn):
			return nil
		case strings.Contains(selector, checkOut):
			if month < monthsAhead {
				return browser.ErrNotFound
			}
		}
		return nil
	}
	page.evaluate = func(script string, res any) error {
		if isScript(script, filterLabelSelector) {
			return setResult(res, true)
		}
		return setResult(res, false)
	}
	return page
}

func TestSearchHappyPath(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 2)
	s := NewSearcher(testOptions(), testLogger())

	if err := s.Search(context.Background(), page, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.navigated) != 1 || page.navigated[0] != "https://www.booking.com/?selected_currency=EUR" {
		t.Errorf("navigated: %v", page.navigated)
	}
	if page.inputs[searchInputSelector] != "Lisbon" {
		t.Errorf("search input: got %q", page.inputs[searchInputSelector])
	}

	clicks := strings.Join(page.clicked(), "\n")
	for _, want := range []string{
		consentSelector + "[0]",
		calendarButtonSelectors[0] + "[0]",
		`span[data-date="2026-11-02"][0]`,
		`span[data-date="2026-11-05"][0]`,
		submitSelector + "[0]",
		resultLinkSelector + "[0]",
	} {
		if !strings.Contains(clicks, want) {
			t.Errorf("missing click %s in:\n%s", want, clicks)
		}
	}
	if n := strings.Count(clicks, nextMonthSelector+"[0]"); n != 2 {
		t.Errorf("expected 2 month hops, got %d", n)
	}
}

func TestSearchWithoutConsentBanner(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 0)
	delete(page.present, consentSelector)

	if err := NewSearcher(testOptions(), testLogger()).Search(context.Background(), page, req); err != nil {
		t.Fatalf("missing consent banner must not fail the search: %v", err)
	}
}

func TestSearchCalendarUnavailable(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 0)
	delete(page.present, calendarSelector)

	err := NewSearcher(testOptions(), testLogger()).Search(context.Background(), page, req)
	if !errors.Is(err, ErrCalendar) {
		t.Errorf("expected ErrCalendar, got %v", err)
	}
}

func TestSearchCalendarViaStartDateFallback(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 0)
	for _, sel := range calendarButtonSelectors {
		delete(page.present, sel)
	}
	filterOrStart := page.evaluate
	var startClicked bool
	page.evaluate = func(script string, res any) error {
		if script == clickStartDateButtonJS {
			startClicked = true
			return setResult(res, true)
		}
		return filterOrStart(script, res)
	}

	if err := NewSearcher(testOptions(), testLogger()).Search(context.Background(), page, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !startClicked {
		t.Error("expected the start-date fallback to be used")
	}
}

func TestSearchDateNeverRendered(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 0)
	delete(page.present, nextMonthSelector)
	page.onClick = func(selector string, n int) error {
		if strings.HasPrefix(selector, "span[data-date=") || selector == altNextMonthSelector {
			return browser.ErrNotFound
		}
		return nil
	}

	err := NewSearcher(testOptions(), testLogger()).Search(context.Background(), page, req)
	if !errors.Is(err, ErrDateSelect) {
		t.Errorf("expected ErrDateSelect, got %v", err)
	}
}

func TestSearchDateHopLimit(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 1000)
	opts := testOptions()
	opts.MaxCalendarHops = 4

	err := NewSearcher(opts, testLogger()).Search(context.Background(), page, req)
	if !errors.Is(err, ErrDateSelect) {
		t.Fatalf("expected ErrDateSelect, got %v", err)
	}
	if !strings.Contains(err.Error(), "check-out") {
		t.Errorf("expected check-out in error, got %v", err)
	}
	if n := strings.Count(strings.Join(page.clicked(), "\n"), nextMonthSelector+"[0]"); n != 4 {
		t.Errorf("expected 4 month hops, got %d", n)
	}
}

func TestSearchFilterMissing(t *testing.T) {
	req := testRequest(3)
	page := searchPage(req.CheckIn, req.CheckOut, 0)
	page.evaluate = func(script string, res any) error { return setResult(res, false) }

	err := NewSearcher(testOptions(), testLogger()).Search(context.Background(), page, req)
	if err == nil || !strings.Contains(err.Error(), `"Hotels"`) {
		t.Errorf("expected property type filter error, got %v", err)
	}
}
