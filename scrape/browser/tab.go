package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/pricewatch/scrape"
)

// navTimeout caps a single navigation. Retail listing pages routinely take
// tens of seconds under resource contention.
const navTimeout = 60 * time.Second

// Tab implements scrape.Page over a Rod page.
type Tab struct {
	page *rod.Page
	log  *slog.Logger
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	pg := t.page.Context(navCtx)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	// Treat a load-event timeout as survivable: heavy pages may never
	// settle but the listing DOM is usually there.
	if err := pg.WaitLoad(); err != nil {
		t.log.Warn("browser: wait load", "url", url, "error", err)
	}
	return nil
}

func (t *Tab) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	el, err := t.page.Context(ctx).Timeout(timeout).Element(sel)
	if err != nil {
		return fmt.Errorf("browser: wait for %s: %w", sel, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("browser: wait visible %s: %w", sel, err)
	}
	return nil
}

func (t *Tab) Query(sel string) ([]scrape.Node, error) {
	els, err := t.page.Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("browser: query %s: %w", sel, err)
	}
	nodes := make([]scrape.Node, len(els))
	for i, el := range els {
		nodes[i] = &element{el: el, page: t.page}
	}
	return nodes, nil
}

func (t *Tab) First(sel string) (scrape.Node, bool) {
	has, el, err := t.page.Has(sel)
	if err != nil || !has {
		return nil, false
	}
	return &element{el: el, page: t.page}, true
}

func (t *Tab) ScrollToBottom(ctx context.Context) error {
	_, err := t.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	if err != nil {
		return fmt.Errorf("browser: scroll: %w", err)
	}
	return nil
}

func (t *Tab) ScrollHeight(ctx context.Context) (float64, error) {
	res, err := t.page.Context(ctx).Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("browser: scroll height: %w", err)
	}
	return res.Value.Num(), nil
}

func (t *Tab) URL() string {
	info, err := t.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the tab. The Session owns the browser itself.
func (t *Tab) Close() error {
	return t.page.Close()
}

// element implements scrape.Node over a Rod element. It keeps the page
// handle so Click can wait out the navigation it triggers.
type element struct {
	el   *rod.Element
	page *rod.Page
}

func (e *element) Attr(name string) string {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func (e *element) Text() string {
	s, err := e.el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func (e *element) First(sel string) (scrape.Node, bool) {
	has, el, err := e.el.Has(sel)
	if err != nil || !has {
		return nil, false
	}
	return &element{el: el, page: e.page}, true
}

func (e *element) Click(ctx context.Context) error {
	clickCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	if err := e.el.Context(clickCtx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	// Pagination clicks usually navigate; load-more clicks do not. Either
	// way a failed wait is not fatal.
	if err := e.page.Context(clickCtx).WaitLoad(); err != nil {
		return nil
	}
	return nil
}

func (e *element) Visible() bool {
	v, err := e.el.Visible()
	if err != nil {
		return false
	}
	return v
}

func (e *element) HTML() string {
	s, err := e.el.HTML()
	if err != nil {
		return ""
	}
	return s
}
