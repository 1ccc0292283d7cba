package booking

import (
	"time"

	"booking-scraper/config"
)

// Timings bounds every wait and pause the scraper performs.
type Timings struct {
	SelectorWait time.Duration // one FirstText attempt
	PageLoad     time.Duration // listing navigation and readyState
	Script       time.Duration // DOM snapshot or script evaluation
	Setup        time.Duration // search bootstrap steps
	ConsentWait  time.Duration
	CalendarWait time.Duration
	FilterWait   time.Duration
	ResultsWait  time.Duration
	GalleryOpen  time.Duration
	GalleryRetry time.Duration

	LazyScrollDown     time.Duration
	LazyScrollUp       time.Duration
	GalleryScrollPause time.Duration
	ResultsScrollPause time.Duration
	InputPause         time.Duration
	ConsentPause       time.Duration
	ClickSettle        time.Duration
	CalendarPause      time.Duration
	DatePause          time.Duration
	MonthPause         time.Duration
}

// Options configures extraction, collection and dispatch.
type Options struct {
	BaseURL           string
	Workers           int
	RateLimitMs       int
	MaxAttempts       int
	MaxIdleScrolls    int
	MaxGalleryScrolls int
	MaxCalendarHops   int
	ImageLimit        int
	Timings           Timings
}

// DefaultTimings returns the production waits.
func DefaultTimings() Timings {
	return Timings{
		SelectorWait: 6 * time.Second,
		PageLoad:     20 * time.Second,
		Script:       10 * time.Second,
		Setup:        25 * time.Second,
		ConsentWait:  5 * time.Second,
		CalendarWait: 8 * time.Second,
		FilterWait:   15 * time.Second,
		ResultsWait:  20 * time.Second,
		GalleryOpen:  8 * time.Second,
		GalleryRetry: 3 * time.Second,

		LazyScrollDown:     300 * time.Millisecond,
		LazyScrollUp:       200 * time.Millisecond,
		GalleryScrollPause: 400 * time.Millisecond,
		ResultsScrollPause: 2 * time.Second,
		InputPause:         time.Second,
		ConsentPause:       500 * time.Millisecond,
		ClickSettle:        600 * time.Millisecond,
		CalendarPause:      800 * time.Millisecond,
		DatePause:          400 * time.Millisecond,
		MonthPause:         300 * time.Millisecond,
	}
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:           "https://www.booking.com/",
		Workers:           4,
		MaxAttempts:       1,
		MaxIdleScrolls:    5,
		MaxGalleryScrolls: 20,
		MaxCalendarHops:   24,
		ImageLimit:        15,
		Timings:           DefaultTimings(),
	}
}

// NewOptions overlays runtime configuration on the defaults.
func NewOptions(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}
	if cfg.MaxConcurrency > 0 {
		opts.Workers = cfg.MaxConcurrency
	}
	if cfg.RateLimitMs > 0 {
		opts.RateLimitMs = cfg.RateLimitMs
	}
	if cfg.ListingMaxAttempts > 0 {
		opts.MaxAttempts = cfg.ListingMaxAttempts
	}
	if cfg.MaxIdleScrolls > 0 {
		opts.MaxIdleScrolls = cfg.MaxIdleScrolls
	}
	if cfg.MaxGalleryScrolls > 0 {
		opts.MaxGalleryScrolls = cfg.MaxGalleryScrolls
	}
	if cfg.ImageLimit > 0 {
		opts.ImageLimit = cfg.ImageLimit
	}
	if cfg.SelectorTimeout > 0 {
		opts.Timings.SelectorWait = cfg.SelectorTimeout
	}
	if cfg.PageLoadTimeout > 0 {
		opts.Timings.PageLoad = cfg.PageLoadTimeout
	}
	if cfg.SetupTimeout > 0 {
		opts.Timings.Setup = cfg.SetupTimeout
	}
	return opts
}
