package scrape

import "errors"

var (
	// ErrUnknownSite is returned when no retailer is registered under the
	// requested site name.
	ErrUnknownSite = errors.New("scrape: unknown site")

	// ErrUnknownCategory is returned when a retailer has no URL for the
	// requested category.
	ErrUnknownCategory = errors.New("scrape: unknown category")

	// ErrNoSession is returned by Driver.Scrape when no SessionFactory was
	// configured, i.e. the browser capability is unavailable.
	ErrNoSession = errors.New("scrape: no browser session factory configured")
)
