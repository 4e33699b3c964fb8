// Package coupons holds the pure coupon eligibility and discount rules.
// Redemption accounting (the used_count increment) lives in the checkout
// transaction so a limited-use code can never be over-redeemed.
package coupons

import (
	"errors"
	"math"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
)

var (
	ErrInactive      = errors.New("coupon is not active")
	ErrNotStarted    = errors.New("coupon is not valid yet")
	ErrExpired       = errors.New("coupon has expired")
	ErrMinOrderValue = errors.New("order subtotal below coupon minimum")
	ErrExhausted     = errors.New("coupon usage limit reached")
)

// CheckEligibility validates a coupon against a subtotal at a point in
// time. The exhausted check here is advisory (for the validate endpoint);
// checkout re-checks it atomically in SQL.
func CheckEligibility(c models.Coupon, subtotal float64, now time.Time) error {
	if !c.Active {
		return ErrInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrNotStarted
	}
	if now.After(c.ValidUntil) {
		return ErrExpired
	}
	if subtotal < c.MinOrderValue {
		return ErrMinOrderValue
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return ErrExhausted
	}
	return nil
}

// Discount computes the rupee discount a coupon grants on a subtotal.
// Percent coupons are capped by MaxDiscount (when set); no coupon ever
// discounts more than the subtotal itself.
func Discount(c models.Coupon, subtotal float64) float64 {
	var d float64
	switch c.Type {
	case models.CouponTypePercent:
		d = subtotal * c.Value / 100
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	case models.CouponTypeFlat:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return math.Round(d)
}
