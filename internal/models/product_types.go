package models

import (
	"database/sql"
	"time"
)

// Product statuses
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// Product is the model for the 'products' table
type Product struct {
	ID            int64          `json:"id" db:"id"`
	SellerID      int64          `json:"sellerId" db:"seller_id"`
	SKU           sql.NullString `json:"sku,omitempty" db:"sku"`
	Slug          string         `json:"slug" db:"slug"`
	Name          string         `json:"name" db:"name"`
	Description   string         `json:"description" db:"description"`
	Price         float64        `json:"price" db:"price"` // selling price, whole rupees
	MRP           float64        `json:"mrp" db:"mrp"`
	StockQuantity int            `json:"stockQuantity" db:"stock_quantity"`
	Images        string         `json:"images" db:"images"` // JSON array of URLs
	Status        string         `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}
