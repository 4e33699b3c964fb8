package models

import "time"

// SubscriptionPlan is the model for the 'subscription_plans' table
type SubscriptionPlan struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Price          float64   `json:"price" db:"price"` // rupees per month
	CommissionRate float64   `json:"commissionRate" db:"commission_rate"`
	Features       string    `json:"features" db:"features"` // JSON array of strings
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// SellerSubscription is the model for the 'seller_subscriptions' table
type SellerSubscription struct {
	ID        int64     `json:"id" db:"id"`
	SellerID  int64     `json:"sellerId" db:"seller_id"`
	PlanID    int64     `json:"planId" db:"plan_id"`
	StartedAt time.Time `json:"startedAt" db:"started_at"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}
