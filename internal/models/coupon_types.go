package models

import "time"

// Coupon discount types
const (
	CouponTypePercent = "percent"
	CouponTypeFlat    = "flat"
)

// Coupon is the model for the 'coupons' table. UsageLimit of 0 means
// unlimited redemptions.
type Coupon struct {
	ID            int64     `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	Type          string    `json:"type" db:"type"`
	Value         float64   `json:"value" db:"value"` // percent (0-100) or flat rupees
	MaxDiscount   float64   `json:"maxDiscount" db:"max_discount"`
	MinOrderValue float64   `json:"minOrderValue" db:"min_order_value"`
	UsageLimit    int       `json:"usageLimit" db:"usage_limit"`
	UsedCount     int       `json:"usedCount" db:"used_count"`
	ValidFrom     time.Time `json:"validFrom" db:"valid_from"`
	ValidUntil    time.Time `json:"validUntil" db:"valid_until"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
