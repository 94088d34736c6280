package scrape

import (
	"context"
	"strings"
)

// amazonCategories maps category names to Amazon.ca Resale listing URLs,
// mostly high-value electronics sub-categories where open-box discounts
// are steep.
var amazonCategories = map[string]string{
	"headphones":  "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A667823011%2Cn%3A3379552011&s=popularity-rank&dc",
	"gaming":      "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A110218011&s=popularity-rank&dc",
	"computers":   "https://www.amazon.ca/s?i=electronics&bbn=8929975011&rh=n%3A667823011%2Cn%3A8929975011%2Cn%3A2404990011&s=popularity-rank&dc",
	"components":  "https://www.amazon.ca/s?i=electronics&bbn=8929975011&rh=n%3A667823011%2Cn%3A8929975011%2Cn%3A2404990011%2Cn%3A677273011&s=popularity-rank&dc",
	"tvs":         "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A667823011%2Cn%3A6205126011&s=popularity-rank&dc",
	"cameras":     "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A667823011%2Cn%3A3379554011&s=popularity-rank&dc",
	"monitors":    "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A677243011%2Cn%3A677271011&s=popularity-rank&dc",
	"electronics": "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A667823011&s=popularity-rank&dc",
	"home":        "https://www.amazon.ca/s?bbn=8929975011&rh=n%3A8929975011%2Cn%3A6205512011&s=popularity-rank&dc",
}

// Amazon search-result selectors, verified January 2026.
const (
	amazonCard           = "div.s-result-item.s-asin[data-asin]"
	amazonTitle          = "h2 a.a-link-normal span"
	amazonTitleAlt       = ".a-text-normal"
	amazonTitleLink      = "h2 a.a-link-normal"
	amazonPriceSecondary = "[data-cy='secondary-offer-recipe'] .a-color-base"
	amazonPriceOffscreen = ".a-price .a-offscreen"
	amazonPriceWhole     = ".a-price .a-price-whole"
	amazonPriceFraction  = ".a-price .a-price-fraction"
	amazonNext           = "a.s-pagination-next:not(.s-pagination-disabled)"
)

// Amazon scrapes Amazon.ca Resale (the former Warehouse Deals program):
// discounted open-box and refurbished listings.
type Amazon struct{}

func (Amazon) Site() string { return "amazon" }

func (Amazon) CategoryURL(category string) (string, bool) {
	u, ok := amazonCategories[category]
	return u, ok
}

func (Amazon) Categories() []string { return sortedKeys(amazonCategories) }

func (a Amazon) ScrapePage(ctx context.Context, p Page) ([]Item, error) {
	cards, err := waitCards(ctx, p, amazonCard)
	if err != nil || len(cards) == 0 {
		return nil, err
	}

	var items []Item
	for _, card := range cards {
		asin := card.Attr("data-asin")
		if asin == "" {
			continue
		}

		titleNode, ok := card.First(amazonTitleAlt)
		if !ok {
			titleNode, ok = card.First(amazonTitle)
		}
		if !ok {
			continue
		}
		title := strings.TrimSpace(titleNode.Text())
		if title == "" {
			continue
		}

		url := ""
		if link, ok := card.First(amazonTitleLink); ok {
			url = absoluteURL("https://www.amazon.ca", link.Attr("href"))
		}
		if url == "" {
			url = "https://www.amazon.ca/dp/" + asin
		}

		// Resale listings carry their discounted price in a secondary
		// offer block; the main .a-price is the new-item price.
		price, ok := amazonPrice(card)
		if !ok {
			continue
		}

		items = append(items, Item{
			SKU:    asin,
			Title:  title,
			Price:  price,
			URL:    url,
			Source: "amazon",
		})
	}
	return items, nil
}

func amazonPrice(card Node) (float64, bool) {
	if n, ok := card.First(amazonPriceSecondary); ok {
		if price, ok := parsePriceText(n.Text()); ok {
			return price, true
		}
	}
	if n, ok := card.First(amazonPriceOffscreen); ok {
		if price, ok := parsePriceText(n.Text()); ok {
			return price, true
		}
	}
	if whole, ok := card.First(amazonPriceWhole); ok {
		frac := ""
		if f, ok := card.First(amazonPriceFraction); ok {
			frac = f.Text()
		}
		if price, ok := combineParts(whole.Text(), frac); ok {
			return price, true
		}
	}
	return cardPrice(card)
}

func (a Amazon) NextPage(ctx context.Context, p Page) (bool, error) {
	next, ok := p.First(amazonNext)
	if !ok {
		return false, nil
	}
	if err := next.Click(ctx); err != nil {
		return false, err
	}
	return true, nil
}
