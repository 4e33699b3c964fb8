package models

import (
	"database/sql"
	"time"
)

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCOD      = "cod"
)

// Payment statuses
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Order is the model for the 'orders' table. Address, payment and pricing
// are snapshotted onto the row at checkout time so later catalog edits
// never rewrite order history.
type Order struct {
	ID          int64  `json:"id" db:"id"`
	OrderNumber string `json:"orderNumber" db:"order_number"`
	UserID      int64  `json:"userId" db:"user_id"`
	Status      string `json:"status" db:"status"`

	// Shipping address snapshot
	ShipName    string `json:"shipName" db:"ship_name"`
	ShipPhone   string `json:"shipPhone" db:"ship_phone"`
	ShipAddress string `json:"shipAddress" db:"ship_address"`
	ShipCity    string `json:"shipCity" db:"ship_city"`
	ShipState   string `json:"shipState" db:"ship_state"`
	ShipPincode string `json:"shipPincode" db:"ship_pincode"`

	// Payment
	PaymentMethod  string         `json:"paymentMethod" db:"payment_method"`
	PaymentStatus  string         `json:"paymentStatus" db:"payment_status"`
	GatewayOrderID sql.NullString `json:"gatewayOrderId,omitempty" db:"gateway_order_id"`
	TransactionID  sql.NullString `json:"transactionId,omitempty" db:"transaction_id"`
	PaidAt         sql.NullTime   `json:"paidAt,omitempty" db:"paid_at"`

	// Pricing. Invariant: Total = Subtotal + PlatformFee + ShippingFee + Tax - Discount
	Subtotal    float64        `json:"subtotal" db:"subtotal"`
	PlatformFee float64        `json:"platformFee" db:"platform_fee"`
	ShippingFee float64        `json:"shippingFee" db:"shipping_fee"`
	Tax         float64        `json:"tax" db:"tax"`
	Discount    float64        `json:"discount" db:"discount"`
	Total       float64        `json:"total" db:"total"`
	CouponCode  sql.NullString `json:"couponCode,omitempty" db:"coupon_code"`

	// Carrier (populated when the seller ships via Shiprocket)
	AWBCode           sql.NullString `json:"awbCode,omitempty" db:"awb_code"`
	CourierName       sql.NullString `json:"courierName,omitempty" db:"courier_name"`
	LabelURL          sql.NullString `json:"labelUrl,omitempty" db:"label_url"`
	PickupScheduledAt sql.NullTime   `json:"pickupScheduledAt,omitempty" db:"pickup_scheduled_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. Name, SKU, image and
// unit price are snapshots of the product at purchase time.
type OrderItem struct {
	ID        int64          `json:"id" db:"id"`
	OrderID   int64          `json:"orderId" db:"order_id"`
	ProductID int64          `json:"productId" db:"product_id"`
	SellerID  int64          `json:"sellerId" db:"seller_id"`
	Name      string         `json:"name" db:"name"`
	SKU       sql.NullString `json:"sku,omitempty" db:"sku"`
	UnitPrice float64        `json:"unitPrice" db:"unit_price"`
	Quantity  int            `json:"quantity" db:"quantity"`
	Image     sql.NullString `json:"image,omitempty" db:"image"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// OrderEvent is one row of the append-only 'order_events' timeline.
type OrderEvent struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"orderId" db:"order_id"`
	Status      string    `json:"status" db:"status"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
