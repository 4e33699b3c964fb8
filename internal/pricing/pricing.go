// Package pricing is the single source of truth for cart and order totals.
// The cart view, the coupon validator and checkout all call Quote, so the
// stored invariant Total = Subtotal + PlatformFee + ShippingFee + Tax -
// Discount cannot drift between surfaces.
package pricing

import "math"

// Rules carries the platform fee schedule. All amounts are whole rupees.
type Rules struct {
	PlatformFee           float64 // flat, charged when the cart is non-empty
	ShippingFee           float64 // flat, waived at the free-shipping threshold
	FreeShippingThreshold float64 // subtotal at or above this ships free
	TaxRate               float64 // fraction of subtotal, e.g. 0.18
}

// Line is one priced cart/order line.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Breakdown is the result of quoting a cart.
type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platformFee"`
	ShippingFee float64 `json:"shippingFee"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Quote computes the full breakdown for a set of lines and an
// already-computed coupon discount. The discount is clamped so the total
// can never go negative. Every component is rounded to whole rupees.
func Quote(r Rules, lines []Line, discount float64) Breakdown {
	var b Breakdown

	for _, l := range lines {
		b.Subtotal += l.UnitPrice * float64(l.Quantity)
	}
	b.Subtotal = math.Round(b.Subtotal)

	if len(lines) > 0 {
		b.PlatformFee = r.PlatformFee
		if b.Subtotal < r.FreeShippingThreshold {
			b.ShippingFee = r.ShippingFee
		}
	}

	b.Tax = math.Round(b.Subtotal * r.TaxRate)

	b.Discount = math.Round(discount)
	if b.Discount < 0 {
		b.Discount = 0
	}
	if max := b.Subtotal + b.PlatformFee + b.ShippingFee + b.Tax; b.Discount > max {
		b.Discount = max
	}

	b.Total = b.Subtotal + b.PlatformFee + b.ShippingFee + b.Tax - b.Discount
	return b
}
