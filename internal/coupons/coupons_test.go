package coupons

import (
	"errors"
	"testing"
	"time"

	"github.com/bazario/bazario-golang/internal/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func validCoupon() models.Coupon {
	return models.Coupon{
		Code:          "SAVE10",
		Type:          models.CouponTypePercent,
		Value:         10,
		MaxDiscount:   200,
		MinOrderValue: 300,
		UsageLimit:    100,
		UsedCount:     5,
		ValidFrom:     now.Add(-24 * time.Hour),
		ValidUntil:    now.Add(24 * time.Hour),
		Active:        true,
	}
}

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Coupon)
		subtotal float64
		wantErr  error
	}{
		{"valid", func(c *models.Coupon) {}, 1000, nil},
		{"inactive", func(c *models.Coupon) { c.Active = false }, 1000, ErrInactive},
		{"not started", func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) }, 1000, ErrNotStarted},
		{"expired", func(c *models.Coupon) { c.ValidUntil = now.Add(-time.Hour) }, 1000, ErrExpired},
		{"below minimum", func(c *models.Coupon) {}, 299, ErrMinOrderValue},
		{"minimum is inclusive", func(c *models.Coupon) {}, 300, nil},
		{"exhausted", func(c *models.Coupon) { c.UsedCount = 100 }, 1000, ErrExhausted},
		{"zero limit means unlimited", func(c *models.Coupon) { c.UsageLimit = 0; c.UsedCount = 99999 }, 1000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(&c)
			if err := CheckEligibility(c, tt.subtotal, now); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckEligibility() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		want     float64
	}{
		{
			name:     "percent",
			coupon:   models.Coupon{Type: models.CouponTypePercent, Value: 10},
			subtotal: 1000,
			want:     100,
		},
		{
			name:     "percent capped by max discount",
			coupon:   models.Coupon{Type: models.CouponTypePercent, Value: 50, MaxDiscount: 150},
			subtotal: 1000,
			want:     150,
		},
		{
			name:     "flat",
			coupon:   models.Coupon{Type: models.CouponTypeFlat, Value: 75},
			subtotal: 1000,
			want:     75,
		},
		{
			name:     "flat never exceeds subtotal",
			coupon:   models.Coupon{Type: models.CouponTypeFlat, Value: 500},
			subtotal: 120,
			want:     120,
		},
		{
			name:     "percent rounds to whole rupees",
			coupon:   models.Coupon{Type: models.CouponTypePercent, Value: 10},
			subtotal: 333,
			want:     33,
		},
		{
			name:     "unknown type gives nothing",
			coupon:   models.Coupon{Type: "bogus", Value: 50},
			subtotal: 1000,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discount(tt.coupon, tt.subtotal); got != tt.want {
				t.Errorf("Discount() = %v, want %v", got, tt.want)
			}
		})
	}
}
