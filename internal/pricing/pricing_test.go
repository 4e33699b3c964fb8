package pricing

import "testing"

var rules = Rules{
	PlatformFee:           20,
	ShippingFee:           40,
	FreeShippingThreshold: 500,
	TaxRate:               0,
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		discount float64
		want     Breakdown
	}{
		{
			// Two items, subtotal 1200: free shipping, platform fee 20.
			name:  "above free shipping threshold",
			lines: []Line{{UnitPrice: 700, Quantity: 1}, {UnitPrice: 500, Quantity: 1}},
			want:  Breakdown{Subtotal: 1200, PlatformFee: 20, Total: 1220},
		},
		{
			name:  "below threshold pays shipping",
			lines: []Line{{UnitPrice: 150, Quantity: 2}},
			want:  Breakdown{Subtotal: 300, PlatformFee: 20, ShippingFee: 40, Total: 360},
		},
		{
			name:  "threshold is inclusive",
			lines: []Line{{UnitPrice: 500, Quantity: 1}},
			want:  Breakdown{Subtotal: 500, PlatformFee: 20, Total: 520},
		},
		{
			name: "empty cart has no fees",
			want: Breakdown{},
		},
		{
			name:     "coupon discount applied",
			lines:    []Line{{UnitPrice: 600, Quantity: 2}},
			discount: 100,
			want:     Breakdown{Subtotal: 1200, PlatformFee: 20, Discount: 100, Total: 1120},
		},
		{
			name:     "discount clamped to total",
			lines:    []Line{{UnitPrice: 100, Quantity: 1}},
			discount: 9999,
			want:     Breakdown{Subtotal: 100, PlatformFee: 20, ShippingFee: 40, Discount: 160, Total: 0},
		},
		{
			name:     "negative discount ignored",
			lines:    []Line{{UnitPrice: 600, Quantity: 1}},
			discount: -50,
			want:     Breakdown{Subtotal: 600, PlatformFee: 20, Total: 620},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(rules, tt.lines, tt.discount)
			if got != tt.want {
				t.Errorf("Quote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQuoteInvariant(t *testing.T) {
	// Total must always equal subtotal + fees + tax - discount.
	taxed := rules
	taxed.TaxRate = 0.18

	carts := [][]Line{
		{{UnitPrice: 99, Quantity: 3}},
		{{UnitPrice: 1249, Quantity: 1}, {UnitPrice: 50, Quantity: 4}},
		{{UnitPrice: 0.5, Quantity: 7}},
	}
	for _, lines := range carts {
		for _, discount := range []float64{0, 10, 500, 100000} {
			b := Quote(taxed, lines, discount)
			if b.Total != b.Subtotal+b.PlatformFee+b.ShippingFee+b.Tax-b.Discount {
				t.Errorf("invariant broken: %+v", b)
			}
			if b.Total < 0 {
				t.Errorf("negative total: %+v", b)
			}
		}
	}
}

func TestQuoteRounding(t *testing.T) {
	b := Quote(rules, []Line{{UnitPrice: 33.33, Quantity: 3}}, 0)
	if b.Subtotal != 100 {
		t.Errorf("Subtotal = %v, want 100 (whole-rupee rounding)", b.Subtotal)
	}
}
