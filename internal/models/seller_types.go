package models

import (
	"database/sql"
	"time"
)

// Seller onboarding statuses
const (
	SellerStatusPending   = "pending"
	SellerStatusApproved  = "approved"
	SellerStatusRejected  = "rejected"
	SellerStatusSuspended = "suspended"
)

// Seller is the model for the 'sellers' table. One row per onboarded store,
// keyed to a user with role 'seller'.
type Seller struct {
	ID              int64          `json:"id" db:"id"`
	UserID          int64          `json:"userId" db:"user_id"`
	StoreName       string         `json:"storeName" db:"store_name"`
	StoreSlug       string         `json:"storeSlug" db:"store_slug"`
	Status          string         `json:"status" db:"status"`
	GSTIN           sql.NullString `json:"gstin,omitempty" db:"gstin"`
	PickupAddress   string         `json:"pickupAddress" db:"pickup_address"`
	PickupCity      string         `json:"pickupCity" db:"pickup_city"`
	PickupState     string         `json:"pickupState" db:"pickup_state"`
	PickupPincode   string         `json:"pickupPincode" db:"pickup_pincode"`
	PlanID          sql.NullInt64  `json:"planId,omitempty" db:"plan_id"`
	RejectionReason sql.NullString `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}
