package models

import "time"

// Campaign is the model for the 'campaigns' table ("steal deals"): a
// time-boxed flash discount on a single product.
type Campaign struct {
	ID              int64     `json:"id" db:"id"`
	Slug            string    `json:"slug" db:"slug"`
	Title           string    `json:"title" db:"title"`
	ProductID       int64     `json:"productId" db:"product_id"`
	DiscountPercent float64   `json:"discountPercent" db:"discount_percent"`
	StartsAt        time.Time `json:"startsAt" db:"starts_at"`
	EndsAt          time.Time `json:"endsAt" db:"ends_at"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
