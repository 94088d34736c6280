package scrape

import (
	"context"
	"sort"
	"strings"

	"github.com/hazyhaar/pricewatch/extract"
)

// waitCards waits for product cards to appear and returns them. A timeout
// is not an error: listing pages past the last page simply have no cards.
func waitCards(ctx context.Context, p Page, sel string) ([]Node, error) {
	if err := p.WaitVisible(ctx, sel, selectorWait); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	return p.Query(sel)
}

func parsePriceText(text string) (float64, bool) {
	return extract.ExtractPrice(text)
}

func combineParts(whole, fraction string) (float64, bool) {
	return extract.CombineParts(whole, fraction)
}

// cardPrice scans a card's raw markup for a price after every selector
// has missed. Storefronts reshuffle price markup often; the HTML scan
// keeps a card usable until the selectors catch up.
func cardPrice(card Node) (float64, bool) {
	return extract.FindPriceInHTML(card.HTML())
}

// absoluteURL resolves href against base when href is site-relative.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return href
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
