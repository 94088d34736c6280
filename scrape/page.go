package scrape

import (
	"context"
	"time"
)

// Page is the slice of browser-page behaviour the retailer drivers need.
// The production implementation drives a Chrome tab; tests substitute a
// static fake.
type Page interface {
	// Navigate loads url and waits for the DOM to be ready.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until at least one element matching sel is
	// visible, or the timeout elapses.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	// Query returns every element matching sel in document order.
	Query(sel string) ([]Node, error)
	// First returns the first element matching sel, reporting whether one
	// exists.
	First(sel string) (Node, bool)
	// ScrollToBottom scrolls the viewport to the current bottom of the
	// document, triggering lazy-loaded content.
	ScrollToBottom(ctx context.Context) error
	// ScrollHeight reports the current document height in pixels.
	ScrollHeight(ctx context.Context) (float64, error)
	// URL reports the page's current location.
	URL() string
}

// Node is a single element within a Page.
type Node interface {
	// Attr returns the value of the named attribute, or "" when absent.
	Attr(name string) string
	// Text returns the element's visible text content, trimmed.
	Text() string
	// First returns the first descendant matching sel.
	First(sel string) (Node, bool)
	// Click dispatches a click and waits for any resulting navigation.
	Click(ctx context.Context) error
	// Visible reports whether the element is rendered on screen.
	Visible() bool
	// HTML returns the element's outer HTML, or "" when unavailable.
	HTML() string
}

// Session owns one browser instance. Open may be called once per session;
// Close releases the browser.
type Session interface {
	Open(ctx context.Context) (Page, error)
	Close() error
}

// SessionFactory creates a Session configured for one scrape run. A nil
// factory means no browser capability is available; Driver.Scrape reports
// ErrNoSession rather than failing the whole cycle.
type SessionFactory func(cfg Config) (Session, error)
