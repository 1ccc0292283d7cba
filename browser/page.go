// Package browser defines the browser capability the scraper depends on and
// a chromedp-backed implementation of it.
package browser

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a selector matches no element.
var ErrNotFound = errors.New("browser: element not found")

// Page is one browser session showing one document. Every blocking call is
// bounded by the context passed to it.
type Page interface {
	// Navigate loads url in the session.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until document.readyState is "complete".
	WaitReady(ctx context.Context) error
	// WaitPresent blocks until selector matches at least one element.
	WaitPresent(ctx context.Context, selector string) error
	// WaitText blocks until selector matches and returns the rendered text
	// of the first match.
	WaitText(ctx context.Context, selector string) (string, error)
	// HTML returns the current outer HTML of the document.
	HTML(ctx context.Context) (string, error)
	// Evaluate runs a JavaScript expression and decodes its result into res
	// (res may be nil).
	Evaluate(ctx context.Context, script string, res any) error
	// ClickNth scrolls the n-th match of selector into view and clicks it.
	ClickNth(ctx context.Context, selector string, n int) error
	// SetInput replaces the value of an input element by typing value.
	SetInput(ctx context.Context, selector, value string) error
	// PressEscape sends the Escape key to the focused element.
	PressEscape(ctx context.Context) error
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// SessionFactory opens isolated browser sessions.
type SessionFactory interface {
	NewSession(ctx context.Context) (Page, error)
}
