package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Patterns matched against text nodes, in priority order. The first match
// wins: on product pages the main price renders before ads and accessories.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+\.\d{2}`),
	regexp.MustCompile(`(?:CAD|USD|US\$|Price:?\s*\$?)\s*([\d,]+\.?\d*)`),
}

// Attributes that carry a machine-readable price in common storefront markup.
var priceAttrs = map[string]bool{
	"data-price": true,
	"content":    true,
}

// FindPriceInHTML locates the first plausible price in a static HTML
// document. It is the fallback for pages that render prices server-side and
// do not need a browser; accuracy is lower than selector-driven extraction,
// so callers should prefer the scrape variants when they apply.
func FindPriceInHTML(src string) (float64, bool) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return 0, false
	}

	var found float64
	var ok bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if ok {
			return
		}
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if !priceAttrs[a.Key] {
					continue
				}
				if p, pok := parseCandidate(a.Val); pok {
					found, ok = p, true
					return
				}
			}
			// Script and style text is full of numeric noise.
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		if n.Type == html.TextNode {
			for _, pat := range pricePatterns {
				m := pat.FindString(n.Data)
				if m == "" {
					continue
				}
				if p, pok := parseCandidate(m); pok {
					found, ok = p, true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found, ok
}

// parseCandidate parses a raw match and applies the sanity bounds. A floor of
// 5 filters shipping fees and per-unit add-ons that headline pages list in
// the same markup as prices.
func parseCandidate(s string) (float64, bool) {
	p, ok := ExtractPrice(s)
	if !ok {
		return 0, false
	}
	if p < 5 || p > MaxSanePrice {
		return 0, false
	}
	return p, true
}
