package extract

import "testing"

func TestExtractPrice(t *testing.T) {
	// WHAT: Parse prices from the display formats retailers actually render.
	// WHY: This is the single entry point for untrusted text; every format
	// miss becomes a silently skipped item.
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$29.99", 29.99, true},
		{"29.99", 29.99, true},
		{"$1,299.99", 1299.99, true},
		{"CAD 449.00", 449.00, true},
		{"  $79  ", 79, true},
		{"", 0, false},
		{"Out of stock", 0, false},
		{"$", 0, false},
		{"1.299.99", 0, false}, // multiple decimal points cannot parse
	}
	for _, tt := range tests {
		got, ok := ExtractPrice(tt.in)
		if ok != tt.ok {
			t.Errorf("ExtractPrice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ExtractPrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCombineParts(t *testing.T) {
	// WHAT: Assemble split whole/fraction price fragments.
	// WHY: Amazon renders "1,299" and "99" in separate spans.
	tests := []struct {
		whole, fraction string
		want            float64
		ok              bool
	}{
		{"1,299", "99", 1299.99, true},
		{"49", "", 49.00, true},
		{"49", "95", 49.95, true},
		{"", "99", 0, false},
	}
	for _, tt := range tests {
		got, ok := CombineParts(tt.whole, tt.fraction)
		if ok != tt.ok {
			t.Errorf("CombineParts(%q, %q) ok = %v, want %v", tt.whole, tt.fraction, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("CombineParts(%q, %q) = %v, want %v", tt.whole, tt.fraction, got, tt.want)
		}
	}
}

func TestIsValidPrice(t *testing.T) {
	// WHAT: Range bounds and the caller-supplied floor.
	// WHY: Garbage prices below $1 and above $100k must never reach the store.
	tests := []struct {
		price, min float64
		want       bool
	}{
		{0.5, 50, false},   // below sane minimum
		{150000, 50, false}, // above sane maximum
		{40, 50, false},    // below the floor
		{50, 50, true},     // at the floor
		{99.99, 50, true},
		{75, 0, true},      // zero floor falls back to the default 50
		{40, 0, false},
	}
	for _, tt := range tests {
		if got := IsValidPrice(tt.price, tt.min); got != tt.want {
			t.Errorf("IsValidPrice(%v, %v) = %v, want %v", tt.price, tt.min, got, tt.want)
		}
	}
}
