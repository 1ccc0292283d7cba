package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"booking-scraper/browser"
	"booking-scraper/utils"
)

// fakePage is an in-memory browser.Page. Structural reads come from html,
// live text reads from texts, and scripts are answered by evaluate.
type fakePage struct {
	mu sync.Mutex

	html     func() string
	texts    map[string]string
	present  map[string]bool
	evaluate func(script string, res any) error
	onClick  func(selector string, n int) error

	navigateErr error
	hangReady   bool
	onNavigate  func(url string) error
	onClose     func()

	navigated []string
	clicks    []string
	inputs    map[string]string
	escapes   int
	closed    int
}

func newFakePage(html string) *fakePage {
	return &fakePage{
		html:    func() string { return html },
		texts:   map[string]string{},
		present: map[string]bool{},
		inputs:  map[string]string{},
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	if p.onNavigate != nil {
		return p.onNavigate(url)
	}
	return p.navigateErr
}

func (p *fakePage) WaitReady(ctx context.Context) error {
	if p.hangReady {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *fakePage) WaitPresent(ctx context.Context, selector string) error {
	p.mu.Lock()
	ok := p.present[selector]
	_, hasText := p.texts[selector]
	p.mu.Unlock()
	if ok || hasText {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) WaitText(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.texts[selector]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return p.html(), nil
}

func (p *fakePage) Evaluate(ctx context.Context, script string, res any) error {
	if p.evaluate == nil {
		return nil
	}
	return p.evaluate(script, res)
}

func (p *fakePage) ClickNth(ctx context.Context, selector string, n int) error {
	p.mu.Lock()
	p.clicks = append(p.clicks, fmt.Sprintf("%s[%d]", selector, n))
	hook := p.onClick
	p.mu.Unlock()
	if hook != nil {
		return hook(selector, n)
	}
	return nil
}

func (p *fakePage) SetInput(ctx context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs[selector] = value
	return nil
}

func (p *fakePage) PressEscape(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.escapes++
	return nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	p.closed++
	first := p.closed == 1
	hook := p.onClose
	p.mu.Unlock()
	if first && hook != nil {
		hook()
	}
	return nil
}

func (p *fakePage) closedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) clicked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// fakeSessions hands out pages from build and tracks open sessions.
type fakeSessions struct {
	mu     sync.Mutex
	build  func() *fakePage
	pages  []*fakePage
	opened int64
	err    error
}

func (f *fakeSessions) NewSession(ctx context.Context) (browser.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	atomic.AddInt64(&f.opened, 1)
	p := f.build()
	f.mu.Lock()
	f.pages = append(f.pages, p)
	f.mu.Unlock()
	return p, nil
}

func (f *fakeSessions) leaked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.pages {
		if p.closedCount() == 0 {
			n++
		}
	}
	return n
}

func (f *fakeSessions) navigated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var urls []string
	for _, p := range f.pages {
		p.mu.Lock()
		urls = append(urls, p.navigated...)
		p.mu.Unlock()
	}
	return urls
}

// setResult decodes v into res the way a script result would be.
func setResult(res any, v any) error {
	if res == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, res)
}

func isScript(script, marker string) bool {
	return strings.Contains(script, marker)
}

func testLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, io.Discard) }

func testOptions() Options {
	opts := DefaultOptions()
	opts.Timings = Timings{
		SelectorWait: 50 * time.Millisecond,
		PageLoad:     100 * time.Millisecond,
		Script:       100 * time.Millisecond,
		Setup:        100 * time.Millisecond,
		ConsentWait:  50 * time.Millisecond,
		CalendarWait: 50 * time.Millisecond,
		FilterWait:   100 * time.Millisecond,
		ResultsWait:  50 * time.Millisecond,
		GalleryOpen:  50 * time.Millisecond,
		GalleryRetry: 50 * time.Millisecond,
	}
	return opts
}
