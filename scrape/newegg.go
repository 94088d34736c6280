package scrape

import (
	"context"
	"regexp"
	"strings"
)

var neweggCategories = map[string]string{
	"gpus":         "https://www.newegg.ca/p/pl?N=100007709",
	"cpus":         "https://www.newegg.ca/p/pl?N=100007671",
	"ram":          "https://www.newegg.ca/p/pl?N=100007611",
	"storage":      "https://www.newegg.ca/p/pl?N=100011693",
	"motherboards": "https://www.newegg.ca/p/pl?N=100007627",
	"laptops":      "https://www.newegg.ca/p/pl?N=100006740",
	"monitors":     "https://www.newegg.ca/p/pl?N=100898493",
	"deals":        "https://www.newegg.ca/todays-deals",
}

const (
	neweggCard     = ".item-cell, .item-container"
	neweggTitle    = ".item-title"
	neweggPrice    = ".price-current strong"
	neweggPriceAlt = ".price-current"
)

// Item ids appear in product URLs as /p/N82E16814550466 and similar.
var neweggSKUPattern = regexp.MustCompile(`/p/([A-Z0-9]+)`)

// Next-button variants Newegg has shipped over time, most specific last.
var neweggNextSelectors = []string{
	"a[title='Next']",
	"button[title='Next']",
	".list-tool-pagination a[title='Next']",
	"a.btn-group-page[title='Next']",
}

// Newegg scrapes Newegg.ca component and deals listings.
type Newegg struct{}

func (Newegg) Site() string { return "newegg" }

func (Newegg) CategoryURL(category string) (string, bool) {
	u, ok := neweggCategories[category]
	return u, ok
}

func (Newegg) Categories() []string { return sortedKeys(neweggCategories) }

func (n Newegg) ScrapePage(ctx context.Context, p Page) ([]Item, error) {
	cards, err := waitCards(ctx, p, neweggCard)
	if err != nil || len(cards) == 0 {
		return nil, err
	}

	var items []Item
	for _, card := range cards {
		titleNode, ok := card.First(neweggTitle)
		if !ok {
			continue
		}
		title := strings.TrimSpace(titleNode.Text())
		if title == "" {
			continue
		}
		url := titleNode.Attr("href")

		sku := card.Attr("data-item-id")
		if sku == "" && url != "" {
			if m := neweggSKUPattern.FindStringSubmatch(url); m != nil {
				sku = m[1]
			}
		}
		if sku == "" {
			sku = fallbackSKU("newegg", title)
		}

		price, ok := nodePrice(card, neweggPrice, neweggPriceAlt)
		if !ok {
			continue
		}

		items = append(items, Item{
			SKU:    sku,
			Title:  title,
			Price:  price,
			URL:    url,
			Source: "newegg",
		})
	}
	return items, nil
}

func (n Newegg) NextPage(ctx context.Context, p Page) (bool, error) {
	for _, sel := range neweggNextSelectors {
		next, ok := p.First(sel)
		if !ok {
			continue
		}
		if strings.Contains(next.Attr("class"), "disabled") {
			continue
		}
		if err := next.Click(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// nodePrice tries each selector in turn, then falls back to scanning the
// card's raw markup.
func nodePrice(card Node, selectors ...string) (float64, bool) {
	for _, sel := range selectors {
		if n, ok := card.First(sel); ok {
			if price, ok := parsePriceText(n.Text()); ok {
				return price, true
			}
		}
	}
	return cardPrice(card)
}
