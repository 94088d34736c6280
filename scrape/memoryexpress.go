package scrape

import (
	"context"
	"regexp"
	"strings"
)

var memoryExpressCategories = map[string]string{
	"openbox":      "https://www.memoryexpress.com/Category/OpenBox",
	"clearance":    "https://www.memoryexpress.com/Category/Clearance",
	"gpus":         "https://www.memoryexpress.com/Category/VideoCards",
	"cpus":         "https://www.memoryexpress.com/Category/CPUs",
	"ram":          "https://www.memoryexpress.com/Category/DesktopMemory",
	"motherboards": "https://www.memoryexpress.com/Category/Motherboards",
	"storage":      "https://www.memoryexpress.com/Category/SolidStateDrives",
	"cases":        "https://www.memoryexpress.com/Category/ComputerCases",
	"psus":         "https://www.memoryexpress.com/Category/PowerSupplies",
	"cooling":      "https://www.memoryexpress.com/Category/CPUCooling",
	"laptops":      "https://www.memoryexpress.com/Category/LaptopsNotebooks",
	"monitors":     "https://www.memoryexpress.com/Category/Monitors",
}

const (
	mxCard     = ".c-shca-icon-item, .product-item"
	mxTitle    = ".c-shca-icon-item__body-name a, .product-title a"
	mxPrice    = ".c-shca-icon-item__summary-list .c-shca-icon-item__price, .price-sale"
	mxPriceAlt = ".GrandTotal, .price"
	mxNext     = ".c-pagination__next:not(.disabled) a, .pagination .next a"
)

var mxSKUPattern = regexp.MustCompile(`/Products/([^/]+)`)

// MemoryExpress scrapes memoryexpress.com open-box and clearance listings.
type MemoryExpress struct{}

func (MemoryExpress) Site() string { return "memoryexpress" }

func (MemoryExpress) CategoryURL(category string) (string, bool) {
	u, ok := memoryExpressCategories[category]
	return u, ok
}

func (MemoryExpress) Categories() []string { return sortedKeys(memoryExpressCategories) }

func (m MemoryExpress) ScrapePage(ctx context.Context, p Page) ([]Item, error) {
	cards, err := waitCards(ctx, p, mxCard)
	if err != nil || len(cards) == 0 {
		return nil, err
	}

	var items []Item
	for _, card := range cards {
		titleNode, ok := card.First(mxTitle)
		if !ok {
			continue
		}
		title := strings.TrimSpace(titleNode.Text())
		if title == "" {
			continue
		}
		url := absoluteURL("https://www.memoryexpress.com", titleNode.Attr("href"))

		sku := card.Attr("data-product-id")
		if sku == "" && url != "" {
			if match := mxSKUPattern.FindStringSubmatch(url); match != nil {
				sku = "mx-" + match[1]
			}
		}
		if sku == "" {
			sku = fallbackSKU("mx", title)
		}

		price, ok := nodePrice(card, mxPrice, mxPriceAlt)
		if !ok {
			continue
		}

		items = append(items, Item{
			SKU:    sku,
			Title:  title,
			Price:  price,
			URL:    url,
			Source: "memoryexpress",
		})
	}
	return items, nil
}

func (m MemoryExpress) NextPage(ctx context.Context, p Page) (bool, error) {
	next, ok := p.First(mxNext)
	if !ok {
		return false, nil
	}
	if err := next.Click(ctx); err != nil {
		return false, err
	}
	return true, nil
}
