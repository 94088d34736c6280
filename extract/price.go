// Package extract turns raw scraped text into validated prices.
//
// These are the only functions that see malformed retailer markup; everything
// downstream (store, analyzer, alerts) assumes well-formed positive prices.
package extract

import (
	"strconv"
	"strings"
)

// Price sanity bounds. Values outside this range are parsing garbage,
// shipping fees, or placeholder markup, never a real product price.
const (
	MinSanePrice = 1.0
	MaxSanePrice = 100_000.0
)

// DefaultMinPrice is the default caller-supplied price floor. Items below it
// are low-value noise that drowns the anomaly signal.
const DefaultMinPrice = 50.0

// ExtractPrice parses a price from display text like "$1,299.99" or "29.99".
// It strips everything except digits and decimal points, then parses the
// remainder. The second return is false when the text holds no parseable
// price; malformed input never produces an error.
func ExtractPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// CombineParts assembles a price from separate whole and fraction fragments
// (the split layout some retailers render, e.g. "1,299" + "99").
func CombineParts(whole, fraction string) (float64, bool) {
	w := digitsOnly(whole)
	if w == "" {
		return 0, false
	}
	f := digitsOnly(fraction)
	if f == "" {
		f = "00"
	}
	return ExtractPrice(w + "." + f)
}

// IsValidPrice reports whether price is inside the sane range and at or above
// the caller's floor. minPrice <= 0 falls back to DefaultMinPrice.
func IsValidPrice(price, minPrice float64) bool {
	if minPrice <= 0 {
		minPrice = DefaultMinPrice
	}
	if price < MinSanePrice || price > MaxSanePrice {
		return false
	}
	return price >= minPrice
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
