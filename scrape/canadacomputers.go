package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The site redirects old cPath URLs; confirmed /en/ paths are used where
// known.
var canadaComputersCategories = map[string]string{
	"openbox":      "https://www.canadacomputers.com/en/openbox",
	"clearance":    "https://www.canadacomputers.com/en/clearance",
	"gpus":         "https://www.canadacomputers.com/en/915/desktop-graphics-cards",
	"cpus":         "https://www.canadacomputers.com/index.php?cPath=4_64",
	"ram":          "https://www.canadacomputers.com/index.php?cPath=24_311_312",
	"motherboards": "https://www.canadacomputers.com/index.php?cPath=26",
	"storage":      "https://www.canadacomputers.com/index.php?cPath=179_1088",
	"cases":        "https://www.canadacomputers.com/index.php?cPath=6_112",
	"psus":         "https://www.canadacomputers.com/index.php?cPath=33_442",
	"cooling":      "https://www.canadacomputers.com/index.php?cPath=8_129",
	"laptops":      "https://www.canadacomputers.com/index.php?cPath=710",
	"desktops":     "https://www.canadacomputers.com/index.php?cPath=7",
	"monitors":     "https://www.canadacomputers.com/index.php?cPath=22_700",
}

// Prestashop layout, 2024/2025 redesign.
const (
	ccCard     = "article.product-miniature"
	ccTitle    = ".product-title a"
	ccPrice    = "span.price"
	ccLoadMore = ".load-more a, .btn-load-more, #btn-load-more"
)

var (
	ccURLSKUPattern   = regexp.MustCompile(`/(\d+)-`)
	ccOldSKUPattern   = regexp.MustCompile(`product_id=(\d+)`)
	ccPageParam       = regexp.MustCompile(`[?&]page=(\d+)`)
	ccPageParamUpdate = regexp.MustCompile(`([?&])page=\d+`)
)

// CanadaComputers scrapes canadacomputers.com open-box, clearance, and
// component listings.
type CanadaComputers struct{}

func (CanadaComputers) Site() string { return "canadacomputers" }

func (CanadaComputers) CategoryURL(category string) (string, bool) {
	u, ok := canadaComputersCategories[category]
	return u, ok
}

func (CanadaComputers) Categories() []string { return sortedKeys(canadaComputersCategories) }

func (c CanadaComputers) ScrapePage(ctx context.Context, p Page) ([]Item, error) {
	cards, err := waitCards(ctx, p, ccCard)
	if err != nil || len(cards) == 0 {
		return nil, err
	}

	var items []Item
	for _, card := range cards {
		titleNode, ok := card.First(ccTitle)
		if !ok {
			continue
		}
		title := strings.TrimSpace(titleNode.Text())
		if title == "" {
			continue
		}
		url := titleNode.Attr("href")

		sku := card.Attr("data-id-product")
		if sku == "" && url != "" {
			m := ccURLSKUPattern.FindStringSubmatch(url)
			if m == nil {
				m = ccOldSKUPattern.FindStringSubmatch(url)
			}
			if m != nil {
				sku = "cc-" + m[1]
			}
		}
		if sku == "" {
			sku = fallbackSKU("cc", title)
		}

		price, ok := nodePrice(card, ccPrice)
		if !ok {
			continue
		}

		items = append(items, Item{
			SKU:    sku,
			Title:  title,
			Price:  price,
			URL:    url,
			Source: "canadacomputers",
		})
	}
	return items, nil
}

// NextPage prefers the Load More button (new layout appends cards in
// place); when absent it falls back to bumping the page= query parameter.
func (c CanadaComputers) NextPage(ctx context.Context, p Page) (bool, error) {
	if more, ok := p.First(ccLoadMore); ok && more.Visible() {
		if err := more.Click(ctx); err == nil {
			return true, nil
		}
	}

	url := p.URL()
	var next string
	if m := ccPageParam.FindStringSubmatch(url); m != nil {
		curr, _ := strconv.Atoi(m[1])
		next = ccPageParamUpdate.ReplaceAllString(url, fmt.Sprintf("${1}page=%d", curr+1))
	} else {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		next = url + sep + "page=2"
	}
	if err := p.Navigate(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}
