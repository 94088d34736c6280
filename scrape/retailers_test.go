package scrape_test

import (
	"context"
	"testing"

	"github.com/hazyhaar/pricewatch/scrape"
)

const amazonCardSel = "div.s-result-item.s-asin[data-asin]"

func amazonCard(asin, title, href, secondaryPrice, offscreenPrice string) *fakeNode {
	kids := map[string]*fakeNode{
		".a-text-normal": {text: title},
	}
	if href != "" {
		kids["h2 a.a-link-normal"] = &fakeNode{attrs: map[string]string{"href": href}}
	}
	if secondaryPrice != "" {
		kids["[data-cy='secondary-offer-recipe'] .a-color-base"] = &fakeNode{text: secondaryPrice}
	}
	if offscreenPrice != "" {
		kids[".a-price .a-offscreen"] = &fakeNode{text: offscreenPrice}
	}
	return &fakeNode{
		attrs: map[string]string{"data-asin": asin},
		kids:  kids,
	}
}

// TestAmazonScrapePage verifies selector wiring against a canned DOM:
// ASIN, title, URL resolution, and the resale price preference.
func TestAmazonScrapePage(t *testing.T) {
	page := &fakePage{views: []*fakeView{{
		cards: map[string][]*fakeNode{amazonCardSel: {
			// Secondary (resale) price must win over the new-item price.
			amazonCard("B0AAA", "Refurb Headphones", "/dp/B0AAA?ref=x", "$129.99", "$199.99"),
			// No secondary offer: falls back to the offscreen price.
			amazonCard("B0BBB", "Open-Box Monitor", "", "", "$349.00"),
			// No price at all: dropped.
			amazonCard("B0CCC", "Mystery Item", "", "", ""),
			// No ASIN: dropped.
			{attrs: map[string]string{}, kids: map[string]*fakeNode{".a-text-normal": {text: "Ghost"}}},
		}},
	}}}

	items, err := scrape.Amazon{}.ScrapePage(context.Background(), page)
	if err != nil {
		t.Fatalf("ScrapePage: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	first := items[0]
	if first.SKU != "B0AAA" || first.Price != 129.99 || first.Source != "amazon" {
		t.Fatalf("first item = %+v", first)
	}
	if first.URL != "https://www.amazon.ca/dp/B0AAA?ref=x" {
		t.Fatalf("relative href not resolved: %q", first.URL)
	}

	// Missing link falls back to the canonical /dp/ URL.
	if items[1].URL != "https://www.amazon.ca/dp/B0BBB" {
		t.Fatalf("fallback URL = %q", items[1].URL)
	}
}

// TestAmazonScrapeEndToEnd runs the full Driver loop against a two-view
// fake: the second view has no cards and no next button, ending the run.
func TestAmazonScrapeEndToEnd(t *testing.T) {
	page := &fakePage{}
	page.views = []*fakeView{
		{
			cards: map[string][]*fakeNode{amazonCardSel: {
				amazonCard("B0AAA", "Refurb Headphones", "", "$129.99", ""),
			}},
			first: map[string]*fakeNode{
				"a.s-pagination-next:not(.s-pagination-disabled)": {
					onClick: func() error { page.idx++; return nil },
				},
			},
		},
		{}, // past the last page
	}

	url, _ := scrape.Amazon{}.CategoryURL("headphones")
	d := scrape.NewDriver(scrape.Amazon{}, scrape.Config{CategoryURL: url},
		scrape.WithSessionFactory(pageFactory(page)),
		scrape.WithDelayPolicy(scrape.NoDelay),
		scrape.WithLogger(discard()),
	)

	items, err := d.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(items) != 1 || items[0].SKU != "B0AAA" {
		t.Fatalf("items = %+v, want [B0AAA]", items)
	}
	if page.URL() != url {
		t.Fatalf("page URL = %q, want the category URL", page.URL())
	}
}

// TestNeweggSKUFromURL verifies the /p/ URL fallback when the card carries
// no data-item-id.
func TestNeweggSKUFromURL(t *testing.T) {
	page := &fakePage{views: []*fakeView{{
		cards: map[string][]*fakeNode{".item-cell, .item-container": {
			{kids: map[string]*fakeNode{
				".item-title": {
					text:  "RTX 4070 Open Box",
					attrs: map[string]string{"href": "https://www.newegg.ca/p/N82E16814550466"},
				},
				".price-current strong": {text: "699"},
			}},
		}},
	}}}

	items, err := scrape.Newegg{}.ScrapePage(context.Background(), page)
	if err != nil {
		t.Fatalf("ScrapePage: %v", err)
	}
	if len(items) != 1 || items[0].SKU != "N82E16814550466" {
		t.Fatalf("items = %+v, want SKU from URL", items)
	}
}

// TestNeweggRawHTMLPriceFallback verifies that when no price selector
// matches, the price is recovered from the card's own markup.
func TestNeweggRawHTMLPriceFallback(t *testing.T) {
	page := &fakePage{views: []*fakeView{{
		cards: map[string][]*fakeNode{".item-cell, .item-container": {
			{
				attrs: map[string]string{"data-item-id": "14-550-466"},
				html:  `<div class="item-cell"><span class="new-price-block">$1,299.99</span></div>`,
				kids: map[string]*fakeNode{
					".item-title": {text: "RTX 4080 Super"},
				},
			},
		}},
	}}}

	items, err := scrape.Newegg{}.ScrapePage(context.Background(), page)
	if err != nil {
		t.Fatalf("ScrapePage: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 via HTML fallback", len(items))
	}
	if items[0].Price != 1299.99 {
		t.Fatalf("price = %v, want 1299.99", items[0].Price)
	}
}

// TestNeweggNextPageSkipsDisabled verifies a disabled next button reads as
// end of listing rather than an error.
func TestNeweggNextPageSkipsDisabled(t *testing.T) {
	page := &fakePage{views: []*fakeView{{
		first: map[string]*fakeNode{
			"a[title='Next']": {attrs: map[string]string{"class": "btn disabled"}},
		},
	}}}

	more, err := scrape.Newegg{}.NextPage(context.Background(), page)
	if err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	if more {
		t.Fatal("disabled next button paginated")
	}
}

// TestCanadaComputersNextPageURLFallback verifies the page= bump when no
// Load More button is present.
func TestCanadaComputersNextPageURLFallback(t *testing.T) {
	page := &fakePage{views: []*fakeView{{}, {}}}
	page.url = "https://www.canadacomputers.com/en/clearance?page=2"

	more, err := scrape.CanadaComputers{}.NextPage(context.Background(), page)
	if err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	if !more {
		t.Fatal("URL fallback reported no more pages")
	}
	if page.URL() != "https://www.canadacomputers.com/en/clearance?page=3" {
		t.Fatalf("navigated to %q, want page=3", page.URL())
	}
}

// TestMemoryExpressSKUPrefix verifies Memory Express ids get their source
// prefix whether from the attribute or the URL.
func TestMemoryExpressSKUPrefix(t *testing.T) {
	page := &fakePage{views: []*fakeView{{
		cards: map[string][]*fakeNode{".c-shca-icon-item, .product-item": {
			{kids: map[string]*fakeNode{
				".c-shca-icon-item__body-name a, .product-title a": {
					text:  "Open Box SSD",
					attrs: map[string]string{"href": "/Products/MX00123456"},
				},
				".c-shca-icon-item__summary-list .c-shca-icon-item__price, .price-sale": {text: "$89.99"},
			}},
		}},
	}}}

	items, err := scrape.MemoryExpress{}.ScrapePage(context.Background(), page)
	if err != nil {
		t.Fatalf("ScrapePage: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %+v, want 1", items)
	}
	if items[0].SKU != "mx-MX00123456" {
		t.Fatalf("SKU = %q, want mx-MX00123456", items[0].SKU)
	}
	if items[0].URL != "https://www.memoryexpress.com/Products/MX00123456" {
		t.Fatalf("URL = %q, want absolute", items[0].URL)
	}
}
