package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const readyPollInterval = 200 * time.Millisecond

// Options configures the Chrome process started for each session.
type Options struct {
	Headless  bool
	ChromeBin string
	UserAgent string
}

// Launcher starts one isolated Chrome browser per session.
type Launcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	binary      string
}

// NewLauncher prepares an exec allocator. No browser is started until
// NewSession is called.
func NewLauncher(ctx context.Context, opts Options) *Launcher {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1440, 900),
		chromedp.UserAgent(ua),
	)

	bin := FindChromeBinary(opts.ChromeBin)
	if bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	return &Launcher{allocCtx: allocCtx, cancelAlloc: cancel, binary: bin}
}

// Binary returns the resolved browser executable ("" means chromedp's default lookup).
func (l *Launcher) Binary() string {
	return l.binary
}

// NewSession starts a fresh browser with its own profile and returns its
// single tab. The caller must Close the page.
func (l *Launcher) NewSession(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Suppress chromedp log noise
	tabCtx, cancel := chromedp.NewContext(l.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run starts the browser; it must use the tab context itself,
	// a derived timeout would tear the browser down when it fires.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start session: %w", err)
	}
	return &ChromePage{ctx: tabCtx, cancel: cancel}, nil
}

// Close shuts down every browser started by the launcher.
func (l *Launcher) Close() {
	l.cancelAlloc()
}

// ChromePage implements Page on a chromedp tab.
type ChromePage struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// scope derives a context usable by chromedp that is also bounded by the
// caller's cancellation and deadline.
func (p *ChromePage) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)

	release := func() {
		stop()
		cancel()
	}
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		return runCtx, func() {
			cancelDeadline()
			release()
		}
	}
	return runCtx, release
}

func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := p.scope(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) WaitReady(ctx context.Context) error {
	runCtx, cancel := p.scope(ctx)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		var state string
		if err := chromedp.Run(runCtx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			return fmt.Errorf("browser: ready state: %w", err)
		}
		if state == "complete" {
			return nil
		}
		select {
		case <-runCtx.Done():
			return fmt.Errorf("browser: ready state %q: %w", state, runCtx.Err())
		case <-ticker.C:
		}
	}
}

func (p *ChromePage) WaitPresent(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *ChromePage) WaitText(ctx context.Context, selector string) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.NodeReady))
	return text, err
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *ChromePage) Evaluate(ctx context.Context, script string, res any) error {
	return p.run(ctx, chromedp.Evaluate(script, res))
}

func (p *ChromePage) ClickNth(ctx context.Context, selector string, n int) error {
	var clicked bool
	script := fmt.Sprintf(`(function() {
		var el = document.querySelectorAll(%s)[%d];
		if (!el) return false;
		el.scrollIntoView({block: 'center'});
		el.click();
		return true;
	})()`, JSString(selector), n)

	if err := p.Evaluate(ctx, script, &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("%w: %s[%d]", ErrNotFound, selector, n)
	}
	return nil
}

func (p *ChromePage) SetInput(ctx context.Context, selector, value string) error {
	return p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *ChromePage) PressEscape(ctx context.Context) error {
	return p.run(ctx, chromedp.KeyEvent(kb.Escape))
}

func (p *ChromePage) Close() error {
	p.closeOnce.Do(p.cancel)
	return nil
}

// JSString encodes s as a JavaScript string literal.
func JSString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// FindChromeBinary locates a Chrome/Chromium binary, preferring explicit.
func FindChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
