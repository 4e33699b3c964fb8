package models

import (
	"database/sql"
	"time"
)

// ReturnRequest is the model for the 'return_requests' table. One open
// return per order; its status advances through the returns machine in
// internal/status.
type ReturnRequest struct {
	ID          int64  `json:"id" db:"id"`
	OrderID     int64  `json:"orderId" db:"order_id"`
	Status      string `json:"status" db:"status"`
	Reason      string `json:"reason" db:"reason"`
	Description string `json:"description" db:"description"`
	Images      string `json:"images" db:"images"` // JSON array of URLs

	// Quality check (filled at 'received' or later)
	QCCondition sql.NullString `json:"qcCondition,omitempty" db:"qc_condition"`
	QCComments  sql.NullString `json:"qcComments,omitempty" db:"qc_comments"`

	ResolutionReason sql.NullString  `json:"resolutionReason,omitempty" db:"resolution_reason"`
	RefundAmount     sql.NullFloat64 `json:"refundAmount,omitempty" db:"refund_amount"`
	RefundID         sql.NullString  `json:"refundId,omitempty" db:"refund_id"`

	RequestedAt time.Time    `json:"requestedAt" db:"requested_at"`
	ResolvedAt  sql.NullTime `json:"resolvedAt,omitempty" db:"resolved_at"`
}
