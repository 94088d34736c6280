package extract

import "testing"

// TestFindPriceInHTML covers the markup shapes retailers actually ship:
// display-text prices, machine-readable attributes, and noise that must
// not parse.
func TestFindPriceInHTML(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  float64
		found bool
	}{
		{
			name:  "display text",
			src:   `<div class="price"><span>$1,299.99</span></div>`,
			want:  1299.99,
			found: true,
		},
		{
			name:  "data-price attribute",
			src:   `<span data-price="449.50">currently on sale</span>`,
			want:  449.50,
			found: true,
		},
		{
			name:  "meta content attribute",
			src:   `<meta itemprop="price" content="89.99">`,
			want:  89.99,
			found: true,
		},
		{
			name:  "currency-prefixed without symbol",
			src:   `<p>Price: 329.00 plus tax</p>`,
			want:  329.00,
			found: true,
		},
		{
			name: "first price wins",
			src: `<div><span>$599.99</span></div>
				<div class="accessory"><span>$24.99</span></div>`,
			want:  599.99,
			found: true,
		},
		{
			name:  "script noise ignored",
			src:   `<script>var x = {"price": "$999.99"}</script><b>$149.99</b>`,
			want:  149.99,
			found: true,
		},
		{
			name:  "script-only document yields nothing",
			src:   `<script>var x = {"price": "$19.99"}</script><body>sold out</body>`,
			found: false,
		},
		{
			name:  "shipping fee below floor rejected",
			src:   `<span>$4.99</span>`,
			found: false,
		},
		{
			name:  "no price",
			src:   `<div>Out of stock</div>`,
			found: false,
		},
		{
			name:  "empty document",
			src:   "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindPriceInHTML(tt.src)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Fatalf("price = %v, want %v", got, tt.want)
			}
		})
	}
}
