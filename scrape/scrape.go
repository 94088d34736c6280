// Package scrape collects discounted-item listings from Canadian electronics
// retailers.
//
// A Retailer knows one site's selectors and pagination; a Driver runs the
// shared loop around it: open a browser session, walk listing pages,
// scroll out lazy-loaded content, validate prices, and deduplicate by SKU.
// The browser itself lives behind the Session and Page interfaces so the
// loop is testable without Chrome; scrape/browser supplies the real
// implementation.
package scrape

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/hazyhaar/pricewatch/extract"
)

// Item is a single listing scraped from any retailer.
type Item struct {
	// SKU uniquely identifies the item within its source (ASIN for
	// Amazon, item id for the others).
	SKU    string  `json:"sku"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	URL    string  `json:"url"`
	Source string  `json:"source"`
}

// Retailer holds the site-specific half of scraping: selectors, category
// URLs, and pagination. Implementations are stateless.
type Retailer interface {
	// Site is the registry name ("amazon", "newegg", ...). It doubles as
	// the Source field on scraped items.
	Site() string
	// CategoryURL maps a category name to its listing URL.
	CategoryURL(category string) (string, bool)
	// Categories lists the known category names, sorted.
	Categories() []string
	// ScrapePage parses every listing on the current page. A page with no
	// product cards is not an error; it returns an empty slice.
	ScrapePage(ctx context.Context, p Page) ([]Item, error)
	// NextPage advances to the following listing page, reporting false
	// when there is none.
	NextPage(ctx context.Context, p Page) (bool, error)
}

// selectorWait bounds how long ScrapePage implementations wait for product
// cards before concluding the page is empty.
const selectorWait = 15 * time.Second

// maxScrolls caps the scroll-to-bottom loop per page.
const maxScrolls = 10

// Driver runs the shared scrape loop for one retailer and one category URL.
type Driver struct {
	retailer Retailer
	cfg      Config
	sessions SessionFactory
	delay    DelayPolicy
	log      *slog.Logger
}

// DriverOption customises a Driver.
type DriverOption func(*Driver)

// WithSessionFactory sets the browser session source. Without one the
// Driver reports ErrNoSession instead of scraping.
func WithSessionFactory(f SessionFactory) DriverOption {
	return func(d *Driver) { d.sessions = f }
}

// WithDelayPolicy overrides the pause between page actions. Tests pass
// NoDelay.
func WithDelayPolicy(p DelayPolicy) DriverOption {
	return func(d *Driver) { d.delay = p }
}

// WithLogger sets the Driver's logger. Default slog.Default().
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) { d.log = l }
}

// NewDriver builds a Driver for one retailer. cfg.CategoryURL must be set;
// other zero fields take defaults.
func NewDriver(r Retailer, cfg Config, opts ...DriverOption) *Driver {
	d := &Driver{
		retailer: r,
		cfg:      cfg.withDefaults(),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.delay == nil {
		d.delay = RandomDelay(d.cfg.DelayMin, d.cfg.DelayMax)
	}
	return d
}

// Site returns the underlying retailer's site name.
func (d *Driver) Site() string { return d.retailer.Site() }

// CategoryURL returns the listing URL this Driver scrapes.
func (d *Driver) CategoryURL() string { return d.cfg.CategoryURL }

// Category returns the registry category name, or "" for a Driver built
// from a raw URL.
func (d *Driver) Category() string { return d.cfg.Category }

// Scrape walks listing pages and returns the unique, price-validated items
// found. On mid-run failure it returns the items collected so far along
// with the error; callers store partial results rather than discarding a
// page of good data.
func (d *Driver) Scrape(ctx context.Context) ([]Item, error) {
	site := d.retailer.Site()
	if d.sessions == nil {
		d.log.Error("browser capability unavailable", "site", site)
		return nil, ErrNoSession
	}

	sess, err := d.sessions(d.cfg)
	if err != nil {
		return nil, fmt.Errorf("scrape: %s: open session: %w", site, err)
	}
	defer sess.Close()

	page, err := sess.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %s: open page: %w", site, err)
	}

	d.log.Info("loading category", "site", site, "url", d.cfg.CategoryURL)
	if err := page.Navigate(ctx, d.cfg.CategoryURL); err != nil {
		return nil, fmt.Errorf("scrape: %s: navigate: %w", site, err)
	}
	if err := d.delay(ctx); err != nil {
		return nil, err
	}

	var all []Item
	seen := make(map[string]struct{})

	for pageNum := 1; pageNum <= d.cfg.MaxPages; pageNum++ {
		d.log.Info("scraping page", "site", site, "page", pageNum, "max_pages", d.cfg.MaxPages)

		if err := d.scrollToBottom(ctx, page); err != nil {
			return all, fmt.Errorf("scrape: %s: scroll: %w", site, err)
		}

		items, err := d.retailer.ScrapePage(ctx, page)
		if err != nil {
			return all, fmt.Errorf("scrape: %s: page %d: %w", site, pageNum, err)
		}

		for _, it := range items {
			if !extract.IsValidPrice(it.Price, d.cfg.MinPrice) {
				d.log.Debug("skipping item outside price bounds",
					"site", site, "sku", it.SKU, "price", it.Price)
				continue
			}
			if _, dup := seen[it.SKU]; dup {
				continue
			}
			seen[it.SKU] = struct{}{}
			all = append(all, it)
		}
		d.log.Info("page done", "site", site, "page", pageNum,
			"page_items", len(items), "total_unique", len(all))

		if pageNum == d.cfg.MaxPages {
			break
		}
		if err := d.delay(ctx); err != nil {
			return all, err
		}
		more, err := d.retailer.NextPage(ctx, page)
		if err != nil {
			return all, fmt.Errorf("scrape: %s: next page: %w", site, err)
		}
		if !more {
			d.log.Info("no more pages", "site", site, "page", pageNum)
			break
		}
		if err := d.delay(ctx); err != nil {
			return all, err
		}
	}

	d.log.Info("scrape complete", "site", site, "unique_items", len(all))
	return all, nil
}

// scrollToBottom repeatedly scrolls and waits until the document height
// stops growing, so lazy-loaded cards are in the DOM before parsing.
func (d *Driver) scrollToBottom(ctx context.Context, p Page) error {
	var prev float64
	for i := 0; i < maxScrolls; i++ {
		if err := p.ScrollToBottom(ctx); err != nil {
			return err
		}
		if err := d.delay(ctx); err != nil {
			return err
		}
		h, err := p.ScrollHeight(ctx)
		if err != nil {
			return err
		}
		if h == prev {
			break
		}
		prev = h
	}
	return nil
}

// fallbackSKU derives a stable synthetic SKU from the title for listings
// that expose no id at all.
func fallbackSKU(prefix, title string) string {
	h := fnv.New32a()
	h.Write([]byte(title))
	return fmt.Sprintf("%s-%d", prefix, h.Sum32()%1_000_000)
}
